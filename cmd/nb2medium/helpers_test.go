package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
	"testing"

	nb2medium "github.com/alnah/go-nb2medium"
	"github.com/alnah/go-nb2medium/internal/medium"
)

// testNotebook has a markdown cell, a six-line code cell and a dataframe
// output rendered to output_2_0.png.
const testNotebook = `{
  "cells": [
    {"cell_type": "markdown", "metadata": {}, "source": ["# Hello"]},
    {"cell_type": "code", "execution_count": 1, "metadata": {},
     "source": ["a = 1\n", "b = 2\n", "c = 3\n", "d = 4\n", "e = 5\n", "f = 6"], "outputs": []},
    {"cell_type": "code", "execution_count": 2, "metadata": {}, "source": ["df"],
     "outputs": [{"output_type": "execute_result", "execution_count": 2, "metadata": {},
                  "data": {"text/html": ["<style>td{}</style><table><tr><td>1</td></tr></table>"],
                           "text/plain": ["df"]}}]}
  ],
  "metadata": {"language_info": {"name": "python", "file_extension": ".py"}},
  "nbformat": 4,
  "nbformat_minor": 5
}`

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeTables renders every table to the same PNG. Safe for concurrent use.
type fakeTables struct{}

func (fakeTables) Render(ctx context.Context, html string) ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString([]byte("PNG"))), nil
}

// fakeMedium records the post; no request leaves the process.
type fakeMedium struct {
	mu      sync.Mutex
	token   string
	meErr   error
	uploads int
	post    *medium.Post
}

var _ nb2medium.MediumAPI = (*fakeMedium)(nil)

func (f *fakeMedium) Me(ctx context.Context) (*medium.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &medium.User{ID: "u1", Username: "author"}, nil
}

func (f *fakeMedium) PublicationID(ctx context.Context, userID, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	return "pub-" + name, nil
}

func (f *fakeMedium) UploadImage(ctx context.Context, name, contentType string, data []byte) (*medium.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return &medium.Image{URL: "https://cdn.example.com/" + name}, nil
}

func (f *fakeMedium) CreatePost(ctx context.Context, userID, publicationID string, post *medium.Post) (*medium.PostResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.post = post
	return &medium.PostResult{ID: "p1", URL: "https://medium.com/p/p1", PublishStatus: post.PublishStatus}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestEnv returns an environment with captured output, fake tables and
// api behind NewMedium.
func newTestEnv(api *fakeMedium) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		NewMedium: func(token string) nb2medium.MediumAPI {
			api.token = token
			return api
		},
		NewGist:          nb2medium.NewGistClient,
		ConverterOptions: []nb2medium.Option{nb2medium.WithTableConverter(fakeTables{})},
	}
	return env, &stdout, &stderr
}

// writeNotebook writes testNotebook to dir/name and returns its path.
func writeNotebook(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(testNotebook), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
