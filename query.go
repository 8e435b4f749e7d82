package snowflake

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// QueryOptions tunes a single query's async-polling behavior.
type QueryOptions struct {
	// PollInterval is the wait between poll attempts. Defaults to 10s.
	PollInterval time.Duration
	// Timeout bounds the whole poll loop (a deadline, not an attempt
	// count). Defaults to the Session's configured timeout, or 5 minutes.
	Timeout time.Duration
	// MaxConcurrentChunkDownloads bounds how many result chunks are
	// fetched in parallel. Defaults to 4.
	MaxConcurrentChunkDownloads int64
}

func (o QueryOptions) withDefaults(sessionTimeout time.Duration) QueryOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.Timeout <= 0 {
		if sessionTimeout > 0 {
			o.Timeout = sessionTimeout
		} else {
			o.Timeout = 5 * time.Minute
		}
	}
	if o.MaxConcurrentChunkDownloads <= 0 {
		o.MaxConcurrentChunkDownloads = 4
	}
	return o
}

func (s *Session) authHeaders() map[string]string {
	return map[string]string{"Authorization": `Snowflake Token="` + s.token + `"`}
}

// Query submits sql for execution, polls until the async query settles, and
// returns a QueryExecutor over the result set.
func (s *Session) Query(ctx context.Context, sql string, opts ...QueryOptions) (*QueryExecutor, error) {
	opt := QueryOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}
	opt = opt.withDefaults(s.timeout)

	deadline := time.Now().Add(opt.Timeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	params := url.Values{"requestId": {uuid.NewString()}}
	fullURL := s.base.ResolveReference(&url.URL{Path: "/queries/v1/query-request", RawQuery: params.Encode()}).String()

	s.client.log.Debugf("submitting query (%d bytes of SQL text)", len(sql))
	var envelope queryResponseEnvelope
	if err := postJSON(pollCtx, s.client.http, fullURL, s.authHeaders(), map[string]string{"sqlText": sql}, &envelope); err != nil {
		s.client.log.Warnf("query-request failed: %v", err)
		return nil, err
	}

	envelope, err := s.pollUntilSettled(pollCtx, envelope, opt.PollInterval, deadline)
	if err != nil {
		return nil, err
	}

	if envelope.Code == codeSessionExpired {
		s.client.log.Warn("session token expired")
		return nil, newErr(KindSessionExpired, "session token expired", nil)
	}
	if !envelope.Success {
		return nil, newCommunicationErr(envelope.Message)
	}
	if envelope.Data.QueryResultFormat != "" && envelope.Data.QueryResultFormat != "json" {
		return nil, newErr(KindUnsupportedFormat, "unsupported queryResultFormat: "+envelope.Data.QueryResultFormat, nil)
	}

	if err := validateHeaderMap(envelope.Data.ChunkHeaders); err != nil {
		return nil, err
	}

	chunks := envelope.Data.Chunks
	for i := range chunks {
		chunkURL, err := resolveURL(s.base, chunks[i].URL)
		if err != nil {
			return nil, err
		}
		chunks[i].URL = chunkURL
	}

	columnTypes := make([]ColumnType, len(envelope.Data.RowType))
	for i, rt := range envelope.Data.RowType {
		columnTypes[i] = ColumnType{
			Name: rt.Name, Index: i, Type: rt.Type, Nullable: rt.Nullable,
			Length: rt.Length, Precision: rt.Precision, Scale: rt.Scale,
		}
	}

	return &QueryExecutor{
		session:                s,
		queryID:                envelope.Data.QueryID,
		columnTypes:            columnTypes,
		columnIndex:            BuildColumnIndex(columnTypes),
		firstBatch:             envelope.Data.RowSet,
		chunks:                 chunks,
		chunkHeaders:           envelope.Data.ChunkHeaders,
		qrmk:                   envelope.Data.Qrmk,
		maxConcurrentDownloads: opt.MaxConcurrentChunkDownloads,
	}, nil
}

// Execute is an alias for Query: it returns the streaming cursor over the
// result set rather than draining it, for callers that want to name the
// distinction between submitting a query and fetching its rows.
func (s *Session) Execute(ctx context.Context, sql string, opts ...QueryOptions) (*QueryExecutor, error) {
	return s.Query(ctx, sql, opts...)
}

// QueryAll submits sql and drains the whole result set, honoring
// QueryOptions.MaxConcurrentChunkDownloads for out-of-band chunk fan-out.
func (s *Session) QueryAll(ctx context.Context, sql string, opts ...QueryOptions) ([]Row, error) {
	exec, err := s.Query(ctx, sql, opts...)
	if err != nil {
		return nil, err
	}
	return exec.FetchAll(ctx)
}

func (s *Session) pollUntilSettled(ctx context.Context, envelope queryResponseEnvelope, interval time.Duration, deadline time.Time) (queryResponseEnvelope, error) {
	for isInProgress(envelope.Code) {
		s.client.log.Debugf("query still in progress (code %s), polling again in %v", envelope.Code, interval)
		if envelope.Data.GetResultURL == "" {
			return envelope, newErr(KindNoPollingURL, "server reported in-progress but supplied no polling URL", nil)
		}
		if time.Now().After(deadline) {
			return envelope, newErr(KindTimedOut, "timed out waiting for async query to complete", nil)
		}
		select {
		case <-ctx.Done():
			return envelope, newErr(KindTimedOut, "timed out waiting for async query to complete", ctx.Err())
		case <-time.After(interval):
		}

		resultURL, err := resolveURL(s.base, envelope.Data.GetResultURL)
		if err != nil {
			return envelope, err
		}
		var next queryResponseEnvelope
		if err := getJSON(ctx, s.client.http, resultURL, s.authHeaders(), &next); err != nil {
			return envelope, err
		}
		envelope = next
	}
	return envelope, nil
}

// QueryExecutor is a cursor over an executed query's result set: an
// in-memory first batch plus zero or more out-of-band chunks. State
// mutation (which batch/chunk has been consumed) is mutex-guarded, but the
// HTTP download itself always happens outside the lock.
type QueryExecutor struct {
	session     *Session
	queryID     string
	columnTypes []ColumnType
	columnIndex map[string]int

	mu                     sync.Mutex
	firstBatchTaken        bool
	firstBatch             [][]*string
	nextChunkIdx           int
	chunks                 []rawQueryResponseChunk
	chunkHeaders           map[string]string
	qrmk                   string
	maxConcurrentDownloads int64
}

// QueryID returns the server-assigned query ID.
func (q *QueryExecutor) QueryID() string { return q.queryID }

// ColumnTypes returns the result set's column metadata.
func (q *QueryExecutor) ColumnTypes() []ColumnType { return q.columnTypes }

func (q *QueryExecutor) rowsFromValues(values [][]*string) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = NewRow(v, q.columnTypes, q.columnIndex)
	}
	return rows
}

// Eof reports whether every batch/chunk has been consumed.
func (q *QueryExecutor) Eof() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.firstBatchTaken && q.nextChunkIdx >= len(q.chunks)
}

// FetchNextChunk returns the next unconsumed batch of rows (the in-memory
// first batch, then each out-of-band chunk in order), or (nil, false, nil)
// once exhausted.
func (q *QueryExecutor) FetchNextChunk(ctx context.Context) ([]Row, bool, error) {
	q.mu.Lock()
	if !q.firstBatchTaken {
		q.firstBatchTaken = true
		batch := q.firstBatch
		q.mu.Unlock()
		if len(batch) == 0 {
			return q.FetchNextChunk(ctx)
		}
		return q.rowsFromValues(batch), true, nil
	}
	if q.nextChunkIdx >= len(q.chunks) {
		q.mu.Unlock()
		return nil, false, nil
	}
	chunk := q.chunks[q.nextChunkIdx]
	q.nextChunkIdx++
	headers, qrmk := q.chunkHeaders, q.qrmk
	q.mu.Unlock()

	q.session.client.log.Debugf("downloading chunk %s", chunk.URL)
	values, err := downloadChunk(ctx, q.session.client.http, chunk.URL, headers, qrmk)
	if err != nil {
		q.session.client.log.Warnf("chunk download failed: %v", err)
		return nil, false, err
	}
	return q.rowsFromValues(values), true, nil
}

// FetchAll consumes every remaining batch/chunk, downloading chunks
// concurrently (bounded by the QueryOptions.MaxConcurrentChunkDownloads the
// query was submitted with) while preserving result order.
func (q *QueryExecutor) FetchAll(ctx context.Context) ([]Row, error) {
	return q.FetchAllWithLimit(ctx, int(q.maxConcurrentDownloads))
}

// FetchAllWithLimit consumes every remaining batch/chunk, downloading
// chunks concurrently with a counting-semaphore cap of
// clamp(len(pending chunks), 1, max) in-flight downloads (max<1 is treated
// as 1). The initial rowset comes first, followed by each chunk's rows in
// the order the chunks were listed, regardless of download completion order.
func (q *QueryExecutor) FetchAllWithLimit(ctx context.Context, max int) ([]Row, error) {
	q.mu.Lock()
	var firstRows []Row
	if !q.firstBatchTaken {
		q.firstBatchTaken = true
		firstRows = q.rowsFromValues(q.firstBatch)
	}
	pending := append([]rawQueryResponseChunk(nil), q.chunks[q.nextChunkIdx:]...)
	q.nextChunkIdx = len(q.chunks)
	headers, qrmk := q.chunkHeaders, q.qrmk
	q.mu.Unlock()

	if len(pending) == 0 {
		return firstRows, nil
	}

	limit := int64(max)
	if limit < 1 {
		limit = 1
	}
	if int64(len(pending)) < limit {
		limit = int64(len(pending))
	}
	if limit < 1 {
		limit = 1
	}

	results := make([][]Row, len(pending))
	sem := semaphore.NewWeighted(limit)
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range pending {
		i, chunk := i, chunk
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, newErr(KindFutureJoin, "chunk download cancelled", err)
		}
		g.Go(func() error {
			defer sem.Release(1)
			values, err := downloadChunk(gctx, q.session.client.http, chunk.URL, headers, qrmk)
			if err != nil {
				q.session.client.log.Warnf("chunk download failed: %v", err)
				return err
			}
			results[i] = q.rowsFromValues(values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := firstRows
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
