package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Faultbox/rugosity/internal/config"
)

// prompter reads one answer per line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) yes(question string) (bool, error) {
	ans, err := p.ask(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(ans, "y") || strings.EqualFold(ans, "yes"), nil
}

// askSampling prompts until the answers form valid sampling settings.
func (p *prompter) askSampling(base config.SamplingConfig) (config.SamplingConfig, error) {
	for {
		var a config.SamplingAnswers
		var err error

		if a.Trials, err = p.ask("Number of chains: "); err != nil {
			return base, err
		}
		if a.Length, err = p.ask("Chain length in metres (R for random): "); err != nil {
			return base, err
		}
		if a.RandomLength() {
			if a.MinLength, err = p.ask("  Minimum length: "); err != nil {
				return base, err
			}
			if a.MaxLength, err = p.ask("  Maximum length: "); err != nil {
				return base, err
			}
		}
		if a.Orientation, err = p.ask("Orientation 0-179 degrees (R for random): "); err != nil {
			return base, err
		}

		s, err := config.BuildSampling(a, base)
		if err == nil {
			return s, nil
		}
		fmt.Fprintf(p.out, "%v, please try again.\n\n", err)
	}
}

func cmdInteractive(args []string) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	cfg, _ := setup(fs, args)
	g, name := openDEM(fs, cfg, "interactive [options] <dem>")

	p := &prompter{in: bufio.NewScanner(os.Stdin), out: os.Stdout}
	fmt.Printf("Loaded %s: %d x %d cells of %g m\n\n", name, g.Rows, g.Cols, g.CellSize)

	for {
		err := interactiveSession(p, cfg, name, config.UserPath(), func(c *config.Config) error {
			return runSample(c, g, name)
		})
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		again, err := p.yes("\nRun another session?")
		if err != nil || !again {
			return
		}
		fmt.Println()
	}
}

// interactiveSession collects one session's settings and hands a copy of
// cfg carrying them to run. With a savePath the sampling settings can be
// kept as defaults for later runs; cfg itself is never changed.
func interactiveSession(p *prompter, cfg *config.Config, demName, savePath string, run func(*config.Config) error) error {
	sampling, err := p.askSampling(cfg.Sampling)
	if err != nil {
		return err
	}
	session := *cfg
	session.Sampling = sampling

	if session.Output.CSV, err = p.yes("Save values to CSV?"); err != nil {
		return err
	}
	if session.Output.CSV {
		ans, err := p.ask(fmt.Sprintf("  CSV file name [%s]: ", csvName(session.Output, demName)))
		if err != nil {
			return err
		}
		if ans != "" {
			session.Output.CSVName = strings.TrimSuffix(ans, ".csv")
		}
	}
	if session.Output.Plot, err = p.yes("Plot chains and histogram?"); err != nil {
		return err
	}

	if savePath != "" {
		keep, err := p.yes("Save these sampling settings as defaults?")
		if err != nil {
			return err
		}
		if keep {
			defaults := *cfg
			defaults.Sampling = sampling
			if err := defaults.SaveTo(savePath); err != nil {
				return fmt.Errorf("saving defaults: %w", err)
			}
			fmt.Fprintf(p.out, "Saved defaults to %s\n", savePath)
		}
	}

	fmt.Fprintln(p.out)
	return run(&session)
}
