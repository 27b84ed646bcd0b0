package infrastructure

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"storefront/internal/orders/adapters/memory"
	"storefront/internal/orders/application"
	"storefront/internal/orders/domain"
	"storefront/pkg/auth"
	grpcpkg "storefront/pkg/grpc"
	"storefront/pkg/logger"
)

func newGRPCClient(t *testing.T) (*grpc.ClientConn, *auth.TokenVerifier) {
	t.Helper()

	store := memory.NewStore()
	store.PutProduct(domain.Product{
		ID:     1,
		Name:   "Áo thun",
		Price:  decimal.NewFromInt(200_000),
		Stock:  3,
		Status: domain.ProductStatusActive,
	})
	log := logger.New("test", "debug")
	useCase := application.NewOrderUseCase(application.OrderUseCaseDeps{
		Orders:     store.Orders(),
		Catalog:    store.Catalog(),
		Transactor: store,
		Numbers:    store.Counter(),
		Log:        log,
	})
	verifier := auth.NewTokenVerifier("grpc-secret")

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcpkg.UnaryServerInterceptor(log, time.Second),
		grpcpkg.UnaryAuthInterceptor(verifier),
	))
	NewGRPCServer(useCase).Register(server)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(grpcpkg.JSONCodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, verifier
}

func withToken(t *testing.T, v *auth.TokenVerifier, p auth.Principal) context.Context {
	t.Helper()
	token, err := v.Issue(p, time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), grpcpkg.AuthorizationMetadataKey, "Bearer "+token)
}

func method(name string) string {
	return "/" + OrderServiceName + "/" + name
}

func TestGRPC_CreateAndGet(t *testing.T) {
	conn, verifier := newGRPCClient(t)
	ctx := withToken(t, verifier, auth.Principal{ID: 5, Role: auth.RoleCustomer})

	req := application.CreateOrderInput{
		Items:         []application.OrderItemInput{{ProductID: 1, Quantity: 2}},
		PaymentMethod: "bank_transfer",
		ShippingAddress: application.AddressInput{
			FirstName: "Chi",
			LastName:  "Le",
			Street:    "2 Hai Ba Trung",
			City:      "Ha Noi",
			State:     "HN",
			ZipCode:   "100000",
			Phone:     "0912345678",
		},
	}
	var created OrderResponse
	require.NoError(t, conn.Invoke(ctx, method("CreateOrder"), &req, &created))

	assert.Equal(t, "ORD-", created.OrderNumber[:4])
	assert.Equal(t, "490000.00", created.Pricing.Total)

	var got OrderResponse
	require.NoError(t, conn.Invoke(ctx, method("GetOrder"), &GetOrderRequest{ID: created.ID}, &got))
	assert.Equal(t, created.OrderNumber, got.OrderNumber)
}

func TestGRPC_ErrorMapping(t *testing.T) {
	conn, verifier := newGRPCClient(t)

	var out OrderResponse
	err := conn.Invoke(context.Background(), method("GetOrder"), &GetOrderRequest{ID: 1}, &out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := withToken(t, verifier, auth.Principal{ID: 5, Role: auth.RoleCustomer})
	err = conn.Invoke(ctx, method("GetOrder"), &GetOrderRequest{ID: 42}, &out)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), domain.ReasonOrderNotFound)

	err = conn.Invoke(ctx, method("AdminUpdateStatus"), &SetStatusRequest{ID: 42, Status: "shipped"}, &out)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
