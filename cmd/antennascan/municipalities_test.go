package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/keraies/antennascan/internal/config"
	"github.com/keraies/antennascan/internal/directory"
	"github.com/keraies/antennascan/internal/model"
	"github.com/keraies/antennascan/internal/site/sitetest"
)

func TestNewMunicipalitiesCmd(t *testing.T) {
	t.Parallel()

	cmd := NewMunicipalitiesCmd()

	if cmd.Use != "municipalities" {
		t.Errorf("expected use 'municipalities', got %q", cmd.Use)
	}

	for name, shorthand := range map[string]string{"save": "s", "offline": "", "config": "c", "directory": ""} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("expected %s flag", name)
			continue
		}
		if flag.Shorthand != shorthand {
			t.Errorf("expected %s shorthand %q, got %q", name, shorthand, flag.Shorthand)
		}
	}
}

func TestListMunicipalities(t *testing.T) {
	t.Parallel()

	remoteEntries := []model.MunicipalityEntry{
		{Name: "Χαλκιδέων", Code: "77123"},
		{Name: "Αθηναίων", Code: "10001"},
		{Name: "Ερέτριας", Code: "9121"},
	}

	t.Run("live table", func(t *testing.T) {
		t.Parallel()

		srv := sitetest.NewServer(t, remoteEntries, nil)
		cfg := testConfig(t, srv.URL)

		var out bytes.Buffer
		if err := listMunicipalities(context.Background(), cfg, "", discard, &out); err != nil {
			t.Fatalf("listMunicipalities() error = %v", err)
		}
		for _, want := range []string{"Χαλκιδέων", "77123", "Ερέτριας", "9121"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected %q in listing:\n%s", want, out.String())
			}
		}
		if srv.Searches() != 1 {
			t.Errorf("expected one search form load, got %d", srv.Searches())
		}
	})

	t.Run("offline built-in names", func(t *testing.T) {
		t.Parallel()

		srv := sitetest.NewServer(t, remoteEntries, nil)
		cfg := testConfig(t, srv.URL)
		cfg.Offline = true

		var out bytes.Buffer
		if err := listMunicipalities(context.Background(), cfg, "", discard, &out); err != nil {
			t.Fatalf("listMunicipalities() error = %v", err)
		}
		if !strings.Contains(out.String(), "Χαλκιδέων") {
			t.Errorf("expected Χαλκιδέων in listing:\n%s", out.String())
		}
		if !strings.Contains(strings.ToLower(out.String()), "total") {
			t.Errorf("expected a total footer:\n%s", out.String())
		}
		if srv.Searches() != 0 {
			t.Errorf("expected no request offline, got %d", srv.Searches())
		}
	})

	t.Run("offline names cannot be saved", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Offline = true
		savePath := filepath.Join(t.TempDir(), "municipalities.yaml")

		err := listMunicipalities(context.Background(), cfg, savePath, discard, io.Discard)

		var argErr *InvalidArgumentsError
		if !errors.As(err, &argErr) {
			t.Errorf("expected InvalidArgumentsError, got %v", err)
		}
	})

	t.Run("live table saved as YAML", func(t *testing.T) {
		t.Parallel()

		srv := sitetest.NewServer(t, remoteEntries, nil)
		cfg := testConfig(t, srv.URL)
		savePath := filepath.Join(t.TempDir(), "tables", "municipalities.yaml")

		var out bytes.Buffer
		if err := listMunicipalities(context.Background(), cfg, savePath, discard, &out); err != nil {
			t.Fatalf("listMunicipalities() error = %v", err)
		}
		if !strings.Contains(out.String(), "Saved 3 municipalities") {
			t.Errorf("unexpected output %q", out.String())
		}

		saved, err := directory.LoadFile(savePath)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		want := []model.MunicipalityEntry{
			{Name: "Αθηναίων", Code: "10001"},
			{Name: "Ερέτριας", Code: "9121"},
			{Name: "Χαλκιδέων", Code: "77123"},
		}
		if diff := cmp.Diff(want, saved.List()); diff != "" {
			t.Errorf("saved table mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("saved table resolves names offline", func(t *testing.T) {
		t.Parallel()

		srv := sitetest.NewServer(t, remoteEntries, nil)
		cfg := testConfig(t, srv.URL)
		savePath := filepath.Join(t.TempDir(), "municipalities.yaml")

		if err := listMunicipalities(context.Background(), cfg, savePath, discard, io.Discard); err != nil {
			t.Fatalf("listMunicipalities() error = %v", err)
		}

		cfg.DirectoryFile = savePath
		dir, err := openDirectory(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("openDirectory() error = %v", err)
		}
		entry, err := dir.Resolve("ερετριας")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if entry.Code != "9121" {
			t.Errorf("expected code 9121, got %q", entry.Code)
		}
		if srv.Searches() != 1 {
			t.Errorf("expected only the saving run to load the form, got %d", srv.Searches())
		}
	})

	t.Run("live form without options", func(t *testing.T) {
		t.Parallel()

		srv := sitetest.NewServer(t, nil, nil)
		cfg := testConfig(t, srv.URL)

		err := listMunicipalities(context.Background(), cfg, "", discard, io.Discard)
		if err == nil {
			t.Fatal("expected error for an empty live list")
		}
		if code := exitCode(err); code != ExitFailure {
			t.Errorf("expected exit code %d, got %d", ExitFailure, code)
		}
	})

	t.Run("missing custom table", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.DirectoryFile = filepath.Join(t.TempDir(), "missing.yaml")

		err := listMunicipalities(context.Background(), cfg, "", discard, io.Discard)

		var argErr *InvalidArgumentsError
		if !errors.As(err, &argErr) {
			t.Errorf("expected InvalidArgumentsError, got %v", err)
		}
	})
}
