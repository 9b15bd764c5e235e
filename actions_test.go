package main

import (
	"strings"
	"testing"

	"competitor-sentiment/models"
)

func TestToYAMLKeepsJSONFieldOrder(t *testing.T) {
	v := struct {
		Name   string   `json:"name"`
		Rating float64  `json:"rating"`
		Tags   []string `json:"tags"`
	}{Name: "Cafe One", Rating: 4.5, Tags: []string{"a", "b"}}

	out, err := toYAML(v)
	if err != nil {
		t.Fatalf("toYAML: %v", err)
	}
	got := string(out)
	want := "name: Cafe One\nrating: 4.5\ntags:\n"
	if !strings.HasPrefix(got, want) {
		t.Errorf("yaml: got %q, want prefix %q", got, want)
	}
	if strings.ContainsAny(got, "{[") {
		t.Errorf("yaml should use block style, got %q", got)
	}
}

func TestToYAMLErrorReport(t *testing.T) {
	out, err := toYAML(&models.Report{Industry: "cafes", Region: "Riyadh", Error: "No competitors found"})
	if err != nil {
		t.Fatalf("toYAML: %v", err)
	}
	if !strings.Contains(string(out), "error: No competitors found") {
		t.Errorf("yaml: missing error field in %q", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	called := false
	err := render("xml", nil, func() { called = true })
	if err == nil {
		t.Error("expected error for unknown format")
	}
	if called {
		t.Error("text renderer should not run for unknown format")
	}
}

func TestRenderText(t *testing.T) {
	called := false
	if err := render("TEXT", nil, func() { called = true }); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !called {
		t.Error("text renderer not called")
	}
}
