// Package loader reads the runs dataset into the target database.
//
// The format is chosen by file extension: .csv and .tsv are handed to the
// adapter's delimited-file loader, spreadsheets are converted sheet-first.
// Remote datasets are fetched over HTTP(S) into a temporary file first.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/adapter"
)

// DefaultTable is the table the dataset is loaded into.
const DefaultTable = "data"

// ErrUnsupportedFormat is returned for files whose extension is not a
// known dataset format.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Format is a dataset file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Options describes where the dataset lives and how to read it.
type Options struct {
	// Source is a local path or an http(s) URL.
	Source string
	// Table is the destination table. Defaults to DefaultTable.
	Table string
	// Delimiter overrides the delimiter implied by the extension.
	Delimiter string
	// Sheet selects the spreadsheet sheet. Defaults to the first sheet.
	Sheet string
	// Client fetches remote datasets. Defaults to http.DefaultClient.
	Client *http.Client
	// Logger is optional; nil uses a discard logger.
	Logger *slog.Logger
}

// DetectFormat maps a file name or URL to its dataset format.
func DetectFormat(name string) (Format, error) {
	if u, err := url.Parse(name); err == nil && isRemote(u) {
		name = u.Path
	}
	switch ext := strings.ToLower(path.Ext(filepath.ToSlash(name))); ext {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return "", fmt.Errorf("%w %q: legacy Excel 97-2003 workbooks cannot be read; save the sheet as .xlsx or .csv", ErrUnsupportedFormat, ext)
	default:
		return "", fmt.Errorf("%w %q: expected .csv, .tsv or .xlsx", ErrUnsupportedFormat, ext)
	}
}

func isRemote(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// Load reads the dataset described by opts into adp and returns the table
// name it was loaded into. adp must be connected.
func Load(ctx context.Context, adp adapter.Adapter, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	if opts.Source == "" {
		return "", errors.New("no dataset configured: set data.source or pass --data")
	}

	format, err := DetectFormat(opts.Source)
	if err != nil {
		return "", err
	}

	local := opts.Source
	if u, err := url.Parse(opts.Source); err == nil && isRemote(u) {
		logger.Debug("fetching dataset", slog.String("url", opts.Source))
		local, err = fetch(ctx, opts.Client, u)
		if err != nil {
			return "", err
		}
		defer func() { _ = os.Remove(local) }()
	}

	csvOpts := adapter.CSVOptions{}
	switch format {
	case FormatTSV:
		csvOpts.Delimiter = '\t'
	case FormatXLSX:
		converted, err := sheetToCSV(local, opts.Sheet)
		if err != nil {
			return "", err
		}
		defer func() { _ = os.Remove(converted) }()
		local = converted
	}
	if opts.Delimiter != "" {
		csvOpts.Delimiter = []rune(opts.Delimiter)[0]
	}

	logger.Debug("loading dataset",
		slog.String("source", opts.Source),
		slog.String("format", string(format)),
		slog.String("table", table))

	if err := adp.LoadCSV(ctx, table, local, csvOpts); err != nil {
		return "", fmt.Errorf("failed to load dataset %s: %w", opts.Source, err)
	}
	return table, nil
}

// fetch downloads u into a temporary file that keeps the URL's extension.
func fetch(ctx context.Context, client *http.Client, u *url.URL) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch dataset: %s returned %s", u.Redacted(), resp.Status)
	}

	f, err := os.CreateTemp("", "runlens-*"+path.Ext(u.Path))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to download dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
