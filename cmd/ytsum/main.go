// Command ytsum summarizes YouTube videos from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nijaru/yt-sum/config"
	"github.com/nijaru/yt-sum/errors"
	"github.com/nijaru/yt-sum/logger"
	"github.com/nijaru/yt-sum/models"
	"github.com/nijaru/yt-sum/summarizer"
	"github.com/nijaru/yt-sum/utils"
	"github.com/nijaru/yt-sum/validation"
	"golang.org/x/time/rate"
	"mvdan.cc/xurls/v2"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	videoURL   string
	videoID    string
	percent    int
	choice     string
	debug      bool
	list       bool
	batch      bool
	interval   time.Duration
	baseURL    string
	configPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ytsum", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.videoURL, "url", "", "YouTube video URL")
	fs.StringVar(&opts.videoID, "id", "", "YouTube video id (11 characters)")
	fs.IntVar(&opts.percent, "percent", models.DefaultPercent, "summary size as a percentage of the transcript")
	fs.StringVar(&opts.choice, "choice", string(models.DefaultAlgorithm), "summarization algorithm, one of "+models.AlgorithmNames())
	fs.BoolVar(&opts.debug, "debug", false, "log request diagnostics")
	fs.BoolVar(&opts.list, "list", false, "list the available algorithms and exit")
	fs.BoolVar(&opts.batch, "batch", false, "summarize every YouTube link found on standard input")
	fs.DurationVar(&opts.interval, "interval", 2*time.Second, "minimum delay between requests in batch mode")
	fs.StringVar(&opts.baseURL, "base-url", "", "summarization service base URL")
	fs.StringVar(&opts.configPath, "config", os.Getenv("YTSUM_CONFIG"), "path to a YAML config file")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if opts.list {
		for _, info := range models.AlgorithmCatalog() {
			fmt.Fprintf(stdout, "%-18s %s\n", info.Name, info.Description)
		}
		return exitOK
	}

	sources := 0
	for _, set := range []bool{opts.videoURL != "", opts.videoID != "", opts.batch} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		fmt.Fprintln(stderr, "exactly one of -url, -id or -batch is required")
		fs.Usage()
		return exitUsage
	}

	algorithm, err := validation.ParseAlgorithm(opts.choice)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
	if opts.debug {
		cfg.Summarizer.Debug = true
	}
	if opts.baseURL != "" {
		cfg.Summarizer.BaseURL = opts.baseURL
	}

	logCfg := cfg.Log
	logCfg.Dir = ""
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
	log.SetOutput(stderr)

	client := summarizer.New(
		summarizer.WithBaseURL(cfg.Summarizer.BaseURL),
		summarizer.WithLogger(log),
		summarizer.WithDebug(cfg.Summarizer.Debug),
	)
	reqOpts := []summarizer.RequestOption{
		summarizer.WithPercent(opts.percent),
		summarizer.WithAlgorithm(algorithm),
	}

	if opts.batch {
		return runBatch(ctx, client, stdin, stdout, stderr, opts.interval, reqOpts)
	}

	var result *models.Result
	if opts.videoURL != "" {
		result, err = client.SummarizeByURL(ctx, opts.videoURL, reqOpts...)
	} else {
		result, err = client.SummarizeByID(ctx, opts.videoID, reqOpts...)
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}

	printResult(stdout, result)
	return exitOK
}

// runBatch summarizes each distinct video linked from stdin, pacing requests
// so a long list does not flood the service. Failures are reported and the
// batch continues.
func runBatch(ctx context.Context, client *summarizer.Client, stdin io.Reader, stdout, stderr io.Writer,
	interval time.Duration, reqOpts []summarizer.RequestOption) int {
	input, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintln(stderr, "error: read input:", err)
		return exitError
	}

	links := videoLinks(string(input))
	if len(links) == 0 {
		fmt.Fprintln(stderr, "no YouTube links found on standard input")
		return exitUsage
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	code := exitOK
	for i, link := range links {
		if err := limiter.Wait(ctx); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return exitError
		}

		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintf(stdout, "== %s\n", link)

		result, err := client.SummarizeByURL(ctx, link, reqOpts...)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s: %v\n", link, err)
			code = exitError
			continue
		}
		printResult(stdout, result)
	}
	return code
}

// videoLinks returns the URLs in text that carry a video id, one per video.
func videoLinks(text string) []string {
	seen := map[string]bool{}
	var links []string
	for _, link := range xurls.Strict().FindAllString(text, -1) {
		id, ok := validation.ExtractVideoID(link)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, link)
	}
	return links
}

func printResult(w io.Writer, result *models.Result) {
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintln(w, utils.FormatText(result.Summary))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Characters in transcript: %d\n", result.Stats.LengthOriginal)
	fmt.Fprintf(w, "Sentences in transcript: %d\n", result.Stats.SentenceOriginal)
	fmt.Fprintf(w, "Characters in summary: %d\n", result.Stats.LengthSummary)
	fmt.Fprintf(w, "Sentences in summary: %d\n", result.Stats.SentenceSummary)
}

func exitCode(err error) int {
	switch errors.KindOf(err) {
	case errors.KindInvalidArgument, errors.KindInvalidVideoURL, errors.KindInvalidVideoID:
		return exitUsage
	default:
		return exitError
	}
}
