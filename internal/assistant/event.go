package assistant

import (
	"context"

	"github.com/ziadkadry99/shopdesk/internal/classifier"
)

// Event describes one answered question.
type Event struct {
	Surface     string
	Role        Role
	Query       string
	Label       classifier.Label
	Denied      bool
	Backend     string
	AnswerChars int
}

// Recorder receives an Event after every Answer. It must not block for long
// and cannot change the answer.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Surfaces a question can arrive through.
const (
	SurfaceCLI       = "cli"
	SurfaceHTTP      = "http"
	SurfaceWebSocket = "ws"
	SurfaceMCP       = "mcp"
)

type surfaceKey struct{}

// WithSurface tags ctx with the surface a question came in on.
func WithSurface(ctx context.Context, surface string) context.Context {
	return context.WithValue(ctx, surfaceKey{}, surface)
}

// SurfaceFrom returns the surface set by WithSurface, or SurfaceCLI.
func SurfaceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(surfaceKey{}).(string); ok && s != "" {
		return s
	}
	return SurfaceCLI
}
