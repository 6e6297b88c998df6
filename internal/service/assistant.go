package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"ragdesk/internal/answerer"
	"ragdesk/internal/chunker"
	"ragdesk/internal/domain"
	"ragdesk/internal/index"
	"ragdesk/internal/loader"
	"ragdesk/internal/retriever"
)

// Assistant is the application core: it ingests documents into the
// index and answers questions against it. It holds no session state;
// chat history belongs to the UI and is passed through unchanged.
type Assistant struct {
	loaders   *loader.Registry
	splitter  *chunker.Splitter
	index     *index.Index
	retriever *retriever.Retriever
	answerer  *answerer.Answerer
	logger    *slog.Logger
}

func New(loaders *loader.Registry, splitter *chunker.Splitter, ix *index.Index,
	ret *retriever.Retriever, ans *answerer.Answerer, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		loaders:   loaders,
		splitter:  splitter,
		index:     ix,
		retriever: ret,
		answerer:  ans,
		logger:    logger,
	}
}

// File is one uploaded file to ingest.
type File struct {
	Name string
	Data []byte
}

// IngestReport is the per-file outcome of a batch ingest.
type IngestReport struct {
	File        string
	ChunksAdded int
	Err         error
}

// Ingest loads, chunks, embeds and indexes a single file, returning
// the number of chunks added. An empty file adds zero chunks and is
// not an error. Every chunk of the file carries the same upload id.
func (a *Assistant) Ingest(ctx context.Context, data []byte, filename string) (int, error) {
	units, err := a.loaders.Load(data, filename)
	if err != nil {
		return 0, err
	}
	uploadID := uuid.NewString()
	for i := range units {
		if units[i].Metadata == nil {
			units[i].Metadata = make(map[string]string)
		}
		units[i].Metadata[domain.MetaUploadID] = uploadID
	}
	chunks := a.splitter.Split(units)
	if len(chunks) == 0 {
		a.logger.Info("ingested empty file", "file", filename)
		return 0, nil
	}
	if err := a.index.Add(ctx, chunks); err != nil {
		return 0, err
	}
	a.logger.Info("ingested file", "file", filename, "chunks", len(chunks), "upload_id", uploadID)
	return len(chunks), nil
}

// IngestBatch ingests files independently: one bad file is reported in
// its entry of the tally and does not abort the rest.
func (a *Assistant) IngestBatch(ctx context.Context, files []File) []IngestReport {
	reports := make([]IngestReport, 0, len(files))
	for _, f := range files {
		added, err := a.Ingest(ctx, f.Data, f.Name)
		if err != nil {
			a.logger.Warn("ingest failed", "file", f.Name, "error", err)
		}
		reports = append(reports, IngestReport{File: f.Name, ChunksAdded: added, Err: err})
	}
	return reports
}

// Ask retrieves context for the question and generates an answer with
// cited sources. Returns NoMatchError when the relevance gate rejects
// the retrieval, CompletionError when generation fails.
func (a *Assistant) Ask(ctx context.Context, question string) (domain.AnswerResult, error) {
	bundle, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return a.answerer.Answer(ctx, question, bundle)
}

// Stats reports the current index contents.
func (a *Assistant) Stats() (domain.IndexStats, error) {
	return a.index.Stats()
}

// Reset destroys all indexed entries immediately.
func (a *Assistant) Reset() error {
	if err := a.index.Clear(); err != nil {
		return err
	}
	a.logger.Info("index cleared")
	return nil
}
