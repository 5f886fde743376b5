package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// SplitServiceName is the fully-qualified name of the SplitService service.
const SplitServiceName = "splitwiser.v1.SplitService"

// Procedure paths of the SplitService RPCs.
const (
	SplitServiceAllocateProcedure          = "/splitwiser.v1.SplitService/Allocate"
	SplitServiceStartSplitProcedure        = "/splitwiser.v1.SplitService/StartSplit"
	SplitServiceResetSplitProcedure        = "/splitwiser.v1.SplitService/ResetSplit"
	SplitServiceSelectModeProcedure        = "/splitwiser.v1.SplitService/SelectMode"
	SplitServiceEditShareProcedure         = "/splitwiser.v1.SplitService/EditShare"
	SplitServiceClearShareEditProcedure    = "/splitwiser.v1.SplitService/ClearShareEdit"
	SplitServiceToggleParticipantProcedure = "/splitwiser.v1.SplitService/ToggleParticipant"
	SplitServiceSetTotalProcedure          = "/splitwiser.v1.SplitService/SetTotal"
	SplitServiceGetSplitProcedure          = "/splitwiser.v1.SplitService/GetSplit"
	SplitServiceFinalizeBillProcedure      = "/splitwiser.v1.SplitService/FinalizeBill"
	SplitServiceCancelSplitProcedure       = "/splitwiser.v1.SplitService/CancelSplit"
)

// SplitServiceHandler is implemented by the server side of SplitService.
type SplitServiceHandler interface {
	Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error)
	StartSplit(context.Context, *connect.Request[api.StartSplitRequest]) (*connect.Response[api.SplitResponse], error)
	ResetSplit(context.Context, *connect.Request[api.ResetSplitRequest]) (*connect.Response[api.SplitResponse], error)
	SelectMode(context.Context, *connect.Request[api.SelectModeRequest]) (*connect.Response[api.SplitResponse], error)
	EditShare(context.Context, *connect.Request[api.EditShareRequest]) (*connect.Response[api.SplitResponse], error)
	ClearShareEdit(context.Context, *connect.Request[api.ClearShareEditRequest]) (*connect.Response[api.SplitResponse], error)
	ToggleParticipant(context.Context, *connect.Request[api.ToggleParticipantRequest]) (*connect.Response[api.SplitResponse], error)
	SetTotal(context.Context, *connect.Request[api.SetTotalRequest]) (*connect.Response[api.SplitResponse], error)
	GetSplit(context.Context, *connect.Request[api.GetSplitRequest]) (*connect.Response[api.SplitResponse], error)
	FinalizeBill(context.Context, *connect.Request[api.FinalizeBillRequest]) (*connect.Response[api.FinalizeBillResponse], error)
	CancelSplit(context.Context, *connect.Request[api.CancelSplitRequest]) (*connect.Response[api.CancelSplitResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(Codec{}))
	mux := http.NewServeMux()
	mux.Handle(SplitServiceAllocateProcedure, connect.NewUnaryHandler(SplitServiceAllocateProcedure, svc.Allocate, opts...))
	mux.Handle(SplitServiceStartSplitProcedure, connect.NewUnaryHandler(SplitServiceStartSplitProcedure, svc.StartSplit, opts...))
	mux.Handle(SplitServiceResetSplitProcedure, connect.NewUnaryHandler(SplitServiceResetSplitProcedure, svc.ResetSplit, opts...))
	mux.Handle(SplitServiceSelectModeProcedure, connect.NewUnaryHandler(SplitServiceSelectModeProcedure, svc.SelectMode, opts...))
	mux.Handle(SplitServiceEditShareProcedure, connect.NewUnaryHandler(SplitServiceEditShareProcedure, svc.EditShare, opts...))
	mux.Handle(SplitServiceClearShareEditProcedure, connect.NewUnaryHandler(SplitServiceClearShareEditProcedure, svc.ClearShareEdit, opts...))
	mux.Handle(SplitServiceToggleParticipantProcedure, connect.NewUnaryHandler(SplitServiceToggleParticipantProcedure, svc.ToggleParticipant, opts...))
	mux.Handle(SplitServiceSetTotalProcedure, connect.NewUnaryHandler(SplitServiceSetTotalProcedure, svc.SetTotal, opts...))
	mux.Handle(SplitServiceGetSplitProcedure, connect.NewUnaryHandler(SplitServiceGetSplitProcedure, svc.GetSplit, opts...))
	mux.Handle(SplitServiceFinalizeBillProcedure, connect.NewUnaryHandler(SplitServiceFinalizeBillProcedure, svc.FinalizeBill, opts...))
	mux.Handle(SplitServiceCancelSplitProcedure, connect.NewUnaryHandler(SplitServiceCancelSplitProcedure, svc.CancelSplit, opts...))
	return "/" + SplitServiceName + "/", mux
}

// SplitServiceClient is a client for the splitwiser.v1.SplitService service.
type SplitServiceClient interface {
	SplitServiceHandler
}

// NewSplitServiceClient constructs a client for SplitService. baseURL is the
// server root, for example http://localhost:8080.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(opts, connect.WithCodec(Codec{}))
	return &splitServiceClient{
		allocate:          connect.NewClient[api.AllocateRequest, api.AllocateResponse](httpClient, baseURL+SplitServiceAllocateProcedure, opts...),
		startSplit:        connect.NewClient[api.StartSplitRequest, api.SplitResponse](httpClient, baseURL+SplitServiceStartSplitProcedure, opts...),
		resetSplit:        connect.NewClient[api.ResetSplitRequest, api.SplitResponse](httpClient, baseURL+SplitServiceResetSplitProcedure, opts...),
		selectMode:        connect.NewClient[api.SelectModeRequest, api.SplitResponse](httpClient, baseURL+SplitServiceSelectModeProcedure, opts...),
		editShare:         connect.NewClient[api.EditShareRequest, api.SplitResponse](httpClient, baseURL+SplitServiceEditShareProcedure, opts...),
		clearShareEdit:    connect.NewClient[api.ClearShareEditRequest, api.SplitResponse](httpClient, baseURL+SplitServiceClearShareEditProcedure, opts...),
		toggleParticipant: connect.NewClient[api.ToggleParticipantRequest, api.SplitResponse](httpClient, baseURL+SplitServiceToggleParticipantProcedure, opts...),
		setTotal:          connect.NewClient[api.SetTotalRequest, api.SplitResponse](httpClient, baseURL+SplitServiceSetTotalProcedure, opts...),
		getSplit:          connect.NewClient[api.GetSplitRequest, api.SplitResponse](httpClient, baseURL+SplitServiceGetSplitProcedure, opts...),
		finalizeBill:      connect.NewClient[api.FinalizeBillRequest, api.FinalizeBillResponse](httpClient, baseURL+SplitServiceFinalizeBillProcedure, opts...),
		cancelSplit:       connect.NewClient[api.CancelSplitRequest, api.CancelSplitResponse](httpClient, baseURL+SplitServiceCancelSplitProcedure, opts...),
	}
}

type splitServiceClient struct {
	allocate          *connect.Client[api.AllocateRequest, api.AllocateResponse]
	startSplit        *connect.Client[api.StartSplitRequest, api.SplitResponse]
	resetSplit        *connect.Client[api.ResetSplitRequest, api.SplitResponse]
	selectMode        *connect.Client[api.SelectModeRequest, api.SplitResponse]
	editShare         *connect.Client[api.EditShareRequest, api.SplitResponse]
	clearShareEdit    *connect.Client[api.ClearShareEditRequest, api.SplitResponse]
	toggleParticipant *connect.Client[api.ToggleParticipantRequest, api.SplitResponse]
	setTotal          *connect.Client[api.SetTotalRequest, api.SplitResponse]
	getSplit          *connect.Client[api.GetSplitRequest, api.SplitResponse]
	finalizeBill      *connect.Client[api.FinalizeBillRequest, api.FinalizeBillResponse]
	cancelSplit       *connect.Client[api.CancelSplitRequest, api.CancelSplitResponse]
}

func (c *splitServiceClient) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error) {
	return c.allocate.CallUnary(ctx, req)
}

func (c *splitServiceClient) StartSplit(ctx context.Context, req *connect.Request[api.StartSplitRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.startSplit.CallUnary(ctx, req)
}

func (c *splitServiceClient) ResetSplit(ctx context.Context, req *connect.Request[api.ResetSplitRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.resetSplit.CallUnary(ctx, req)
}

func (c *splitServiceClient) SelectMode(ctx context.Context, req *connect.Request[api.SelectModeRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.selectMode.CallUnary(ctx, req)
}

func (c *splitServiceClient) EditShare(ctx context.Context, req *connect.Request[api.EditShareRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.editShare.CallUnary(ctx, req)
}

func (c *splitServiceClient) ClearShareEdit(ctx context.Context, req *connect.Request[api.ClearShareEditRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.clearShareEdit.CallUnary(ctx, req)
}

func (c *splitServiceClient) ToggleParticipant(ctx context.Context, req *connect.Request[api.ToggleParticipantRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.toggleParticipant.CallUnary(ctx, req)
}

func (c *splitServiceClient) SetTotal(ctx context.Context, req *connect.Request[api.SetTotalRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.setTotal.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.SplitResponse], error) {
	return c.getSplit.CallUnary(ctx, req)
}

func (c *splitServiceClient) FinalizeBill(ctx context.Context, req *connect.Request[api.FinalizeBillRequest]) (*connect.Response[api.FinalizeBillResponse], error) {
	return c.finalizeBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) CancelSplit(ctx context.Context, req *connect.Request[api.CancelSplitRequest]) (*connect.Response[api.CancelSplitResponse], error) {
	return c.cancelSplit.CallUnary(ctx, req)
}
