package matches

import "errors"

// Metadata keys carried for downstream telemetry.
const (
	MetadataUserAgent = "user-agent"
	MetadataPlatform  = "platform"
)

// ErrMissingUserID is returned by RequestBuilder.Build when no positive user id was set.
var ErrMissingUserID = errors.New("user id is required")

// RequestContext describes one feed aggregation request. It is immutable once built;
// accessors hand out copies of the mutable fields.
type RequestContext struct {
	userID           int64
	statuses         StatusSet
	locale           string
	startPage        int
	pageSize         int
	teaserResultSize int
	viewHidden       bool
	allowedSeePhotos bool
	excludeClosed    bool
	sortBy           string
	metadata         map[string]string
}

func (r RequestContext) UserID() int64              { return r.userID }
func (r RequestContext) Statuses() StatusSet        { return r.statuses.Clone() }
func (r RequestContext) Locale() string             { return r.locale }
func (r RequestContext) StartPage() int             { return r.startPage }
func (r RequestContext) PageSize() int              { return r.pageSize }
func (r RequestContext) TeaserResultSize() int      { return r.teaserResultSize }
func (r RequestContext) ViewHidden() bool           { return r.viewHidden }
func (r RequestContext) AllowedSeePhotos() bool     { return r.allowedSeePhotos }
func (r RequestContext) ExcludeClosedMatches() bool { return r.excludeClosed }
func (r RequestContext) SortBy() string             { return r.sortBy }

// Metadata returns a copy of the request metadata.
func (r RequestContext) Metadata() map[string]string {
	out := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

// RequestBuilder assembles a RequestContext field by field.
type RequestBuilder struct {
	ctx RequestContext
}

// NewRequestBuilder returns a builder with every field at its default.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{ctx: RequestContext{statuses: StatusSet{}, metadata: map[string]string{}}}
}

func (b *RequestBuilder) UserID(id int64) *RequestBuilder {
	b.ctx.userID = id
	return b
}

// Statuses replaces the requested statuses.
func (b *RequestBuilder) Statuses(statuses StatusSet) *RequestBuilder {
	b.ctx.statuses = statuses.Clone()
	return b
}

func (b *RequestBuilder) Locale(locale string) *RequestBuilder {
	b.ctx.locale = locale
	return b
}

// Page sets the start page and page size; 0 means unbounded / first page of default size.
func (b *RequestBuilder) Page(startPage, pageSize int) *RequestBuilder {
	b.ctx.startPage = startPage
	b.ctx.pageSize = pageSize
	return b
}

func (b *RequestBuilder) TeaserResultSize(size int) *RequestBuilder {
	b.ctx.teaserResultSize = size
	return b
}

func (b *RequestBuilder) ViewHidden(v bool) *RequestBuilder {
	b.ctx.viewHidden = v
	return b
}

func (b *RequestBuilder) AllowedSeePhotos(v bool) *RequestBuilder {
	b.ctx.allowedSeePhotos = v
	return b
}

func (b *RequestBuilder) ExcludeClosedMatches(v bool) *RequestBuilder {
	b.ctx.excludeClosed = v
	return b
}

func (b *RequestBuilder) SortBy(field string) *RequestBuilder {
	b.ctx.sortBy = field
	return b
}

// Metadata records a non-empty metadata value.
func (b *RequestBuilder) Metadata(key, value string) *RequestBuilder {
	if key != "" && value != "" {
		b.ctx.metadata[key] = value
	}
	return b
}

// Build validates and returns the immutable context. The builder may be reused.
func (b *RequestBuilder) Build() (RequestContext, error) {
	if b.ctx.userID <= 0 {
		return RequestContext{}, ErrMissingUserID
	}
	out := b.ctx
	out.statuses = b.ctx.statuses.Clone()
	out.metadata = make(map[string]string, len(b.ctx.metadata))
	for k, v := range b.ctx.metadata {
		out.metadata[k] = v
	}
	return out, nil
}
