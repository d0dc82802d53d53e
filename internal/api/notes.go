package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/driftline/driftline-go/internal/apierr"
	"github.com/driftline/driftline-go/internal/types"
)

// ListNotes retrieves the caller's notes, newest first. Query constraints are
// applied server-side; a zero-value query returns the default slice.
func ListNotes(ctx context.Context, httpClient *http.Client, baseURL string, q types.ListNotesQuery) ([]types.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Mood != "" {
		params.Set("mood", q.Mood)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	u := baseURL + "/notes"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.Network("list notes", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apierr.FromStatus("list notes", resp.StatusCode, false)
	}

	var notes []types.Note
	if err := json.NewDecoder(resp.Body).Decode(&notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote captures a new note.
func CreateNote(ctx context.Context, httpClient *http.Client, baseURL string, req types.CreateNoteRequest) (*types.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateCreateNote(req); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/notes", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.Network("create note", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apierr.FromStatus("create note", resp.StatusCode, false)
	}

	var note types.Note
	if err := json.NewDecoder(resp.Body).Decode(&note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note by ID.
func DeleteNote(ctx context.Context, httpClient *http.Client, baseURL string, noteID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateNoteID(noteID); err != nil {
		return err
	}
	u := fmt.Sprintf("%s/notes/%d", baseURL, noteID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return apierr.Network("delete note", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apierr.FromStatus("delete note", resp.StatusCode, false)
	}
	return nil
}
