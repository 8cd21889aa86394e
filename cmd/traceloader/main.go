package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/toricodesthings/trace-extraction-service/internal/config"
	"github.com/toricodesthings/trace-extraction-service/internal/discovery"
	"github.com/toricodesthings/trace-extraction-service/internal/extract"
	"github.com/toricodesthings/trace-extraction-service/internal/extractors/delimited"
	"github.com/toricodesthings/trace-extraction-service/internal/extractors/hierarchical"
	"github.com/toricodesthings/trace-extraction-service/internal/render"
	"golang.org/x/sync/errgroup"
)

// job is one file to extract; label heads its section in the output. When
// discovery failed, path holds the scanned directory and err the reason.
type job struct {
	label string
	path  string
	err   error
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	loader := newLoader(cfg)

	var jobs []job
	if len(os.Args) > 1 {
		for _, p := range os.Args[1:] {
			jobs = append(jobs, job{label: filepath.Base(p), path: p})
		}
	} else {
		jobs = discoverJobs(cfg)
	}

	fmt.Println("**********************************************")
	fmt.Println("*******==> Testing code execution  <==********")
	fmt.Println()

	if failed := run(context.Background(), os.Stdout, cfg, loader, jobs); failed == len(jobs) {
		os.Exit(1)
	}
}

func newLoader(cfg config.Config) *extract.Loader {
	registry := extract.NewRegistry()
	registry.Register(extract.Format{
		Name:       "trace/csv",
		Types:      delimited.Types(),
		Extensions: delimited.Extensions(),
		New:        delimited.Factory,
	})
	registry.Register(extract.Format{
		Name:       "trace/hdf5",
		Types:      hierarchical.Types(),
		Extensions: hierarchical.Extensions(),
		New:        hierarchical.Factory,
	})

	loader := extract.NewLoader(registry, cfg.MaxFileBytes)
	loader.SetSuccessHook(func(fileType string, fileSize int64, duration time.Duration) {
		log.WithFields(log.Fields{
			"type":     fileType,
			"bytes":    fileSize,
			"duration": duration,
		}).Debug("extracted")
	})
	return loader
}

// discoverJobs picks the first file of each format from the data directory.
func discoverJobs(cfg config.Config) []job {
	var jobs []job
	for _, ext := range []string{"csv", "h5"} {
		dir := cfg.Dir(ext)
		p, err := discovery.First(dir, ext)
		if err != nil {
			p = dir
		}
		jobs = append(jobs, job{label: strings.ToUpper(ext) + " file", path: p, err: err})
	}
	return jobs
}

// run extracts every job concurrently and prints the results in job order.
// Failures are reported and counted; they never stop the other jobs.
func run(ctx context.Context, out io.Writer, cfg config.Config, loader *extract.Loader, jobs []job) int {
	outputs := make([]bytes.Buffer, len(jobs))
	failures := make([]error, len(jobs))

	var g errgroup.Group
	for i, j := range jobs {
		g.Go(func() error {
			if j.err != nil {
				failures[i] = j.err
				return nil
			}
			ctx, cancel := context.WithTimeout(ctx, cfg.ExtractTimeout)
			defer cancel()

			t, err := loader.Load(ctx, j.path)
			if err != nil {
				failures[i] = err
				return nil
			}
			failures[i] = render.Write(&outputs[i], cfg.OutputFormat, t, cfg.PreviewRows)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, j := range jobs {
		fmt.Fprintf(out, "----> %s <-------\n", j.label)
		if err := failures[i]; err != nil {
			failed++
			msg := describe(j.path, err)
			log.WithField("path", j.path).Error(msg)
			fmt.Fprintln(out, msg)
			continue
		}
		_, _ = outputs[i].WriteTo(out)
	}
	return failed
}

// describe turns an extraction failure into a one-line message for the user.
func describe(path string, err error) string {
	var de *extract.DataError
	switch {
	case errors.As(err, &de):
		return de.Error()
	case errors.Is(err, discovery.ErrNoMatch):
		return fmt.Sprintf("no matching files in %s", path)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Sprintf("%s not found", path)
	case errors.Is(err, extract.ErrSchema):
		return fmt.Sprintf("file %s has an unexpected layout: %v", filepath.Base(path), err)
	case errors.Is(err, extract.ErrParse), errors.Is(err, extract.ErrNoRows):
		return fmt.Sprintf("file %s could not be parsed: %v", filepath.Base(path), err)
	default:
		return fmt.Sprintf("file %s: %v", path, err)
	}
}
