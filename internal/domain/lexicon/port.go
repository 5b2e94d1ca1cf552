package lexicon

import "context"

// RawPayload is the unparsed text the provider produced.
type RawPayload string

// Client performs exactly one provider call per Execute.
// Errors wrap ErrTransport, ErrService (as *ServiceError) or ErrEmptyResponse.
type Client interface {
	Execute(ctx context.Context, req ExternalRequest) (RawPayload, error)
}

// PayloadArchive keeps raw payloads that failed to parse, for later inspection.
type PayloadArchive interface {
	Archive(ctx context.Context, key string, payload RawPayload) (string, error)
}
