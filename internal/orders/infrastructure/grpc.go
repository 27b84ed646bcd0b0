package infrastructure

import (
	"context"

	"google.golang.org/grpc"

	"storefront/internal/orders/application"
	"storefront/pkg/auth"
)

// OrderServiceName is the fully qualified gRPC service name
const OrderServiceName = "storefront.orders.v1.OrderService"

// GetOrderRequest identifies an order
type GetOrderRequest struct {
	ID uint `json:"id"`
}

// ListOrdersRequest pages through the caller's orders
type ListOrdersRequest struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Status string `json:"status"`
}

// AdminListOrdersRequest pages through all orders
type AdminListOrdersRequest struct {
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	Search        string `json:"search"`
}

// CancelRequest cancels one of the caller's orders
type CancelRequest struct {
	ID     uint   `json:"id"`
	Reason string `json:"reason"`
}

// SetStatusRequest is an admin status change
type SetStatusRequest struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

// OrderListResponse is a page of orders
type OrderListResponse struct {
	Orders     []OrderResponse        `json:"orders"`
	Pagination application.Pagination `json:"pagination"`
}

// GRPCServer exposes the order use cases over gRPC with the JSON codec
type GRPCServer struct {
	useCase *application.OrderUseCase
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.OrderUseCase) *GRPCServer {
	return &GRPCServer{useCase: useCase}
}

// Register adds the order service to s
func (s *GRPCServer) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&orderServiceDesc, s)
}

// CreateOrder places an order for the caller
func (s *GRPCServer) CreateOrder(ctx context.Context, req *application.CreateOrderInput) (*OrderResponse, error) {
	output, err := s.useCase.CreateOrder(ctx, callerOf(ctx), *req)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(output.Order)
	return &resp, nil
}

// GetOrder returns one of the caller's orders
func (s *GRPCServer) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderResponse, error) {
	output, err := s.useCase.GetOrder(ctx, callerOf(ctx), application.GetOrderInput{ID: req.ID})
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(output.Order)
	return &resp, nil
}

// ListOrders lists the caller's orders
func (s *GRPCServer) ListOrders(ctx context.Context, req *ListOrdersRequest) (*OrderListResponse, error) {
	output, err := s.useCase.ListOrders(ctx, callerOf(ctx), application.ListOrdersInput{
		Page:   req.Page,
		Limit:  req.Limit,
		Status: req.Status,
	})
	if err != nil {
		return nil, err
	}
	return toListResponse(output), nil
}

// CancelOrder cancels one of the caller's orders
func (s *GRPCServer) CancelOrder(ctx context.Context, req *CancelRequest) (*OrderResponse, error) {
	output, err := s.useCase.CancelOrder(ctx, callerOf(ctx), application.CancelOrderInput{
		OrderID: req.ID,
		Reason:  req.Reason,
	})
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(output.Order)
	return &resp, nil
}

// AdminListOrders lists all orders
func (s *GRPCServer) AdminListOrders(ctx context.Context, req *AdminListOrdersRequest) (*OrderListResponse, error) {
	output, err := s.useCase.AdminListOrders(ctx, callerOf(ctx), application.AdminListOrdersInput{
		Page:          req.Page,
		Limit:         req.Limit,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Search:        req.Search,
	})
	if err != nil {
		return nil, err
	}
	return toListResponse(output), nil
}

// AdminUpdateStatus sets an order's status
func (s *GRPCServer) AdminUpdateStatus(ctx context.Context, req *SetStatusRequest) (*OrderResponse, error) {
	output, err := s.useCase.AdminUpdateStatus(ctx, callerOf(ctx), application.UpdateStatusInput{
		OrderID: req.ID,
		Status:  req.Status,
		Note:    req.Note,
	})
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(output.Order)
	return &resp, nil
}

func callerOf(ctx context.Context) auth.Principal {
	p, _ := auth.FromContext(ctx)
	return p
}

func toListResponse(output *application.ListOrdersOutput) *OrderListResponse {
	orders := make([]OrderResponse, len(output.Orders))
	for i, o := range output.Orders {
		orders[i] = toOrderResponse(o)
	}
	return &OrderListResponse{Orders: orders, Pagination: output.Pagination}
}

// unaryMethod adapts a typed server method to a grpc.MethodDesc
func unaryMethod[Req, Resp any](name string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			server := srv.(*GRPCServer)
			if interceptor == nil {
				return call(server, ctx, req)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + OrderServiceName + "/" + name,
			}
			return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(*Req))
			})
		},
	}
}

var orderServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateOrder", (*GRPCServer).CreateOrder),
		unaryMethod("GetOrder", (*GRPCServer).GetOrder),
		unaryMethod("ListOrders", (*GRPCServer).ListOrders),
		unaryMethod("CancelOrder", (*GRPCServer).CancelOrder),
		unaryMethod("AdminListOrders", (*GRPCServer).AdminListOrders),
		unaryMethod("AdminUpdateStatus", (*GRPCServer).AdminUpdateStatus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/orders/v1",
}
