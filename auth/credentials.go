package auth

import "context"

// TokenCredentials sends the session token on every call as a Bearer authorization header.
// It satisfies credentials.PerRPCCredentials.
type TokenCredentials struct {
	Token string
	// Secure reports whether the token may only travel over TLS.
	Secure bool
}

func (c TokenCredentials) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	return map[string]string{"authorization": c.Header()}, nil
}

func (c TokenCredentials) RequireTransportSecurity() bool {
	return c.Secure
}

// Header is the value of the Authorization header.
func (c TokenCredentials) Header() string {
	return bearerPrefix + c.Token
}
