package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "splitwiser.v1.GroupService"

// Procedure paths of the GroupService RPCs.
const (
	GroupServiceCreateGroupProcedure      = "/splitwiser.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure         = "/splitwiser.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure       = "/splitwiser.v1.GroupService/ListGroups"
	GroupServiceAddMembersProcedure       = "/splitwiser.v1.GroupService/AddMembers"
	GroupServiceDeleteGroupProcedure      = "/splitwiser.v1.GroupService/DeleteGroup"
	GroupServiceRecordPaymentProcedure    = "/splitwiser.v1.GroupService/RecordPayment"
	GroupServiceDeleteBillProcedure       = "/splitwiser.v1.GroupService/DeleteBill"
	GroupServiceDeletePaymentProcedure    = "/splitwiser.v1.GroupService/DeletePayment"
	GroupServiceListLedgerProcedure       = "/splitwiser.v1.GroupService/ListLedger"
	GroupServiceGetGroupBalancesProcedure = "/splitwiser.v1.GroupService/GetGroupBalances"
	GroupServiceGetSettlePlanProcedure    = "/splitwiser.v1.GroupService/GetSettlePlan"
)

// GroupServiceHandler is implemented by the server side of GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
	ListLedger(context.Context, *connect.Request[api.ListLedgerRequest]) (*connect.Response[api.ListLedgerResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetSettlePlan(context.Context, *connect.Request[api.GetSettlePlanRequest]) (*connect.Response[api.GetSettlePlanResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(Codec{}))
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceAddMembersProcedure, connect.NewUnaryHandler(GroupServiceAddMembersProcedure, svc.AddMembers, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceRecordPaymentProcedure, connect.NewUnaryHandler(GroupServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(GroupServiceDeleteBillProcedure, connect.NewUnaryHandler(GroupServiceDeleteBillProcedure, svc.DeleteBill, opts...))
	mux.Handle(GroupServiceDeletePaymentProcedure, connect.NewUnaryHandler(GroupServiceDeletePaymentProcedure, svc.DeletePayment, opts...))
	mux.Handle(GroupServiceListLedgerProcedure, connect.NewUnaryHandler(GroupServiceListLedgerProcedure, svc.ListLedger, opts...))
	mux.Handle(GroupServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	mux.Handle(GroupServiceGetSettlePlanProcedure, connect.NewUnaryHandler(GroupServiceGetSettlePlanProcedure, svc.GetSettlePlan, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the splitwiser.v1.GroupService service.
type GroupServiceClient interface {
	GroupServiceHandler
}

// NewGroupServiceClient constructs a client for GroupService. baseURL is the
// server root, for example http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(opts, connect.WithCodec(Codec{}))
	return &groupServiceClient{
		createGroup:      connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:         connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:       connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMembers:       connect.NewClient[api.AddMembersRequest, api.AddMembersResponse](httpClient, baseURL+GroupServiceAddMembersProcedure, opts...),
		deleteGroup:      connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		recordPayment:    connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+GroupServiceRecordPaymentProcedure, opts...),
		deleteBill:       connect.NewClient[api.DeleteBillRequest, api.DeleteBillResponse](httpClient, baseURL+GroupServiceDeleteBillProcedure, opts...),
		deletePayment:    connect.NewClient[api.DeletePaymentRequest, api.DeletePaymentResponse](httpClient, baseURL+GroupServiceDeletePaymentProcedure, opts...),
		listLedger:       connect.NewClient[api.ListLedgerRequest, api.ListLedgerResponse](httpClient, baseURL+GroupServiceListLedgerProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
		getSettlePlan:    connect.NewClient[api.GetSettlePlanRequest, api.GetSettlePlanResponse](httpClient, baseURL+GroupServiceGetSettlePlanProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMembers       *connect.Client[api.AddMembersRequest, api.AddMembersResponse]
	deleteGroup      *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	recordPayment    *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	deleteBill       *connect.Client[api.DeleteBillRequest, api.DeleteBillResponse]
	deletePayment    *connect.Client[api.DeletePaymentRequest, api.DeletePaymentResponse]
	listLedger       *connect.Client[api.ListLedgerRequest, api.ListLedgerResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getSettlePlan    *connect.Client[api.GetSettlePlanRequest, api.GetSettlePlanResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return c.addMembers.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListLedger(ctx context.Context, req *connect.Request[api.ListLedgerRequest]) (*connect.Response[api.ListLedgerResponse], error) {
	return c.listLedger.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetSettlePlan(ctx context.Context, req *connect.Request[api.GetSettlePlanRequest]) (*connect.Response[api.GetSettlePlanResponse], error) {
	return c.getSettlePlan.CallUnary(ctx, req)
}
