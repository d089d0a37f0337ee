package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func Test_Unary_Interceptor_Injects_Username(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer([]byte("secret"), time.Hour)
	token, err := issuer.Generate("alice")
	req.NoError(err)

	creds := TokenCredentials{Token: token}
	headers, err := creds.GetRequestMetadata(context.Background())
	req.NoError(err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(headers))

	var seen string
	_, err = issuer.UnaryInterceptor(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, _ any) (any, error) {
		seen, _ = UsernameFrom(ctx)
		return nil, nil
	})
	req.NoError(err)
	req.Equal("alice", seen)
}

func Test_Unary_Interceptor_Rejects_Missing_Or_Bad_Token(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer([]byte("secret"), time.Hour)
	handler := func(context.Context, any) (any, error) {
		t.Fatal("handler must not be reached")
		return nil, nil
	}

	for _, ctx := range []context.Context{
		context.Background(),
		metadata.NewIncomingContext(context.Background(), metadata.Pairs()),
		metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope")),
		metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Token nope")),
	} {
		_, err := issuer.UnaryInterceptor(ctx, nil, &grpc.UnaryServerInfo{}, handler)
		req.Equal(codes.Unauthenticated, status.Code(err))
	}
}
