package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	stageKey  contextKey = "stage"
	artistKey contextKey = "artist"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithArtist annotates context with the artist currently being processed.
func WithArtist(ctx context.Context, artist string) context.Context {
	if artist == "" {
		return ctx
	}
	return context.WithValue(ctx, artistKey, artist)
}

// ArtistFromContext returns the artist name if present.
func ArtistFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(artistKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
