// Package gist stores backup documents in GitHub gists.
package gist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vitos/trade_journal/internal/domain"
)

const backupFileName = "trade-journal-backup.json"

// Client pushes and pulls backup documents against the gists API.
type Client struct {
	http *resty.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New()
	client.SetBaseURL(endpoint)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/vnd.github+json")
	return &Client{http: client}
}

type gistFile struct {
	Content string `json:"content"`
}

type gistBody struct {
	Description string              `json:"description,omitempty"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type gistResponse struct {
	ID    string              `json:"id"`
	Files map[string]gistFile `json:"files"`
}

// Push uploads the document, creating a new private gist when gistID is
// empty and patching the existing one otherwise. It returns the gist id
// holding the backup.
func (c *Client) Push(ctx context.Context, token, gistID string, doc *domain.BackupDocument) (string, error) {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	body := gistBody{
		Description: "trade journal backup",
		Files:       map[string]gistFile{backupFileName: {Content: string(content)}},
	}

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&gistResponse{})

	var resp *resty.Response
	if gistID == "" {
		resp, err = req.Post("/gists")
	} else {
		resp, err = req.Patch("/gists/" + gistID)
	}
	if err != nil {
		return "", fmt.Errorf("gist push failed: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return "", err
	}
	return resp.Result().(*gistResponse).ID, nil
}

// Pull downloads and decodes the backup document held in the gist.
func (c *Client) Pull(ctx context.Context, token, gistID string) (*domain.BackupDocument, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&gistResponse{}).
		Get("/gists/" + gistID)
	if err != nil {
		return nil, fmt.Errorf("gist pull failed: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	g := resp.Result().(*gistResponse)
	file, ok := g.Files[backupFileName]
	if !ok {
		return nil, fmt.Errorf("%w: gist %s has no %s", domain.ErrBadBackup, gistID, backupFileName)
	}
	var doc domain.BackupDocument
	if err := json.Unmarshal([]byte(file.Content), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadBackup, err)
	}
	return &doc, nil
}

func checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		return domain.ErrGistAuth
	case resp.StatusCode() == http.StatusNotFound:
		return domain.ErrGistNotFound
	case resp.IsError():
		return fmt.Errorf("gist API returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
