package internal

import "context"

// HeaderCorrelationId is the request header used to carry a correlation id
// between the client and the service.
const HeaderCorrelationId string = "Correlation-Id"

// Configurer is implemented by anything configured from environment
// variables.
type Configurer interface {
	Configure(envs map[string]string) error
}

type Opener interface {
	Open(ctx context.Context) error
	Closer
}

type Closer interface {
	Close(ctx context.Context) error
}

type Clearer interface {
	Clear(ctx context.Context) error
}

type ctxKeyCorrelationId struct{}

func CtxWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationId{}, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if correlationId, ok := ctx.Value(ctxKeyCorrelationId{}).(string); ok {
		return correlationId
	}
	return ""
}
