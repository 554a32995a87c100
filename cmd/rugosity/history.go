package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/Faultbox/rugosity/internal/logger"
	"github.com/Faultbox/rugosity/internal/render"
	"github.com/Faultbox/rugosity/internal/store"
)

func cmdPlot(args []string) {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	valuesCSV := fs.String("values", "", "Render a histogram of rugosity values from this CSV instead")
	session := fs.String("session", "", "Render a histogram of an archived session's values")
	output := fs.String("o", "", "Output image (default <out>/<name>.png)")
	cfg, _ := setup(fs, args)

	if *valuesCSV != "" || *session != "" {
		var (
			values []float64
			name   string
			err    error
		)
		if *valuesCSV != "" {
			name = filepath.Base(*valuesCSV)
			values, err = store.ReadCSVFile(*valuesCSV)
		} else {
			name = *session
			values, err = sessionValues(cfg.Output.Database, *session)
		}
		if err != nil {
			fail(err)
		}
		path := *output
		if path == "" {
			path = filepath.Join(cfg.Output.Dir, "histogram.png")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fail(err)
		}
		if err := render.Histogram(values, name, 20, path); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s (%d values)\n", path, len(values))
		return
	}

	g, name := openDEM(fs, cfg, "plot [-o out.png] <dem>")
	path := *output
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, name+".png")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fail(err)
	}
	if err := render.DEM(g, name, nil, path); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", path)
}

func sessionValues(dbPath, id string) ([]float64, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("no result archive configured, pass -db")
	}
	s, err := store.Open(dbPath, logger.Named("store"))
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Samples(id)
}

func cmdHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	demName := fs.String("dem", "", "Only sessions for this DEM name")
	limit := fs.Int("limit", 20, "Show at most N sessions (0 = all)")
	show := fs.String("show", "", "Print the values of one session")
	remove := fs.String("delete", "", "Delete one session")
	cfg, _ := setup(fs, args)

	if cfg.Output.Database == "" {
		fmt.Fprintln(os.Stderr, "Usage: rugosity history -db <results.db> [-dem name] [-limit n] [-show id] [-delete id]")
		os.Exit(1)
	}
	s, err := store.Open(cfg.Output.Database, logger.Named("store"))
	if err != nil {
		fail(err)
	}
	defer s.Close()

	switch {
	case *remove != "":
		if err := s.Delete(*remove); err != nil {
			fail(err)
		}
		fmt.Printf("Deleted %s\n", *remove)

	case *show != "":
		sess, err := s.Session(*show)
		if err != nil {
			fail(err)
		}
		values, err := s.Samples(*show)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Session: %s\n", sess.ID)
		fmt.Printf("DEM:     %s (%s)\n", sess.DEM, sess.Kind)
		fmt.Printf("Created: %s\n", sess.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if sess.Kind == store.KindSample {
			fmt.Printf("Seed:    %d\n", sess.Seed)
		}
		fmt.Printf("Mean:    %s\n", formatValue(sess.Mean))
		for _, v := range values {
			fmt.Println(v)
		}

	default:
		sessions, err := s.Sessions(*demName, *limit)
		if err != nil {
			fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tDEM\tKIND\tKEPT\tMEAN\tSTD DEV")
		for _, sess := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				sess.ID, sess.CreatedAt.Local().Format("2006-01-02 15:04"), sess.DEM, sess.Kind,
				sess.Kept, formatValue(sess.Mean), formatValue(sess.StdDev))
		}
		w.Flush()
	}
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.6f", v)
}
