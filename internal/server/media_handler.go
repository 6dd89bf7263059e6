package server

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/pipeline"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// multipartMemory is how much of a parsed upload stays in memory before
// spilling to disk.
const multipartMemory = 32 << 20

// Upload receives direct multipart uploads and runs them through the
// acquisition pipeline.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, fmt.Errorf("%w: malformed multipart body", shared.ErrMissingArgument))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var (
		files   []pipeline.UploadedFile
		opened  []multipart.File
		headers []*multipart.FileHeader
	)
	for _, parts := range r.MultipartForm.File {
		headers = append(headers, parts...)
	}
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			writeError(w, fmt.Errorf("%w: reading upload %s: %v", shared.ErrStorage, header.Filename, err))
			return
		}
		opened = append(opened, f)
		files = append(files, pipeline.UploadedFile{
			Name:    header.Filename,
			Size:    header.Size,
			Content: f,
		})
	}

	resp, err := h.pipeline.Upload(r.Context(), identity(r).UserID, files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DownloadYouTube submits a yt-dlp fetch job.
func (h *Handlers) DownloadYouTube(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, models.KindYouTube)
}

// DownloadSpotify submits a spotdl fetch job.
func (h *Handlers) DownloadSpotify(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, models.KindSpotify)
}

func (h *Handlers) download(w http.ResponseWriter, r *http.Request, kind models.JobKind) {
	var req models.DownloadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.pipeline.Remote(r.Context(), identity(r).UserID, kind, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProgressStream writes a job's progress lines as they arrive, one per line,
// until the session is torn down or the client disconnects.
//
// Unknown session IDs still get an immediately-closing stream: the session
// may simply have finished and been reaped before the client attached.
func (h *Handlers) ProgressStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.pipeline.Progress().Attach(sessionID)
	if ch == nil {
		return
	}

	for {
		select {
		case line, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintln(w, line)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
