package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/emocare/emocare-backend/internal/types"
)

type ctxKey struct{}

var requestDataKey ctxKey

// RequestData is the authenticated principal for one request. Every service
// operation receives it through the context it was explicitly handed; nothing
// reads ambient process-wide state.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Role        types.Role
	Tier        types.Tier
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// Authenticated reports whether rd carries a resolved principal.
func (rd *RequestData) Authenticated() bool {
	return rd != nil && rd.UserID != uuid.Nil
}
