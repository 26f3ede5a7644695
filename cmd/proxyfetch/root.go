package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"proxyfetch/internal/shared/config"
	"proxyfetch/internal/shared/logger"
	"proxyfetch/internal/shared/types"
	"proxyfetch/proxypool"
	"proxyfetch/proxypool/model"
)

type rootFlags struct {
	configPath string
	source     string
	url        string
	country    string
	port       int
	anonymity  string
	protocol   string
	all        bool
	limit      int
	seed       uint64
	timeout    time.Duration
	logLevel   string
	json       bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "proxyfetch",
		Short: "Fetch a random public proxy matching optional filters",
		Long: `proxyfetch scrapes a public proxy list and prints a randomly selected
proxy, or every proxy matching the given filters, as http/https URLs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "configs/proxyfetch.ini", `Path to ini config file, "-" reads it from stdin`)
	flags.StringVar(&f.source, "source", "", "Proxy source: free-proxy-list or pubproxy")
	flags.StringVar(&f.url, "url", "", "Override the source URL")
	flags.StringVar(&f.country, "country", "", "Country code (US) or name (United States)")
	flags.IntVar(&f.port, "port", 0, "Proxy port")
	flags.StringVar(&f.anonymity, "anonymity", "", "Anonymity level: transparent, anonymous or elite")
	flags.StringVar(&f.protocol, "protocol", "", "Protocol: http, https, socks4 or socks5")
	flags.BoolVarP(&f.all, "all", "a", false, "Print every matching proxy")
	flags.IntVarP(&f.limit, "limit", "n", 0, fmt.Sprintf("Print up to n random proxies (1-%d)", proxypool.MaxLimit))
	flags.Uint64Var(&f.seed, "seed", 0, "Random seed, 0 for a random one")
	flags.DurationVar(&f.timeout, "timeout", 0, "Request timeout, e.g. 10s")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&f.json, "json", false, "Print results as JSON")

	return cmd
}

// loadConfig 加载 ini 配置，再用显式设置的命令行参数覆盖。
// configPath 为 "-" 时从标准输入读取配置内容。
func loadConfig(cmd *cobra.Command, f *rootFlags) (*types.Config, error) {
	var (
		cfg *types.Config
		err error
	)
	if f.configPath == "-" {
		var data []byte
		if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return nil, fmt.Errorf("failed to read config from stdin: %w", err)
		}
		cfg, err = config.LoadIniBytes(data)
	} else {
		cfg, err = config.LoadIni(f.configPath)
	}
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("source") {
		cfg.SourceConf.Name = f.source
	}
	if changed("url") {
		cfg.URL = f.url
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if changed("log-level") {
		cfg.Level = f.logLevel
	}
	return cfg, nil
}

func buildFilter(f *rootFlags) (model.Filter, error) {
	anonymity, err := model.ParseAnonymity(f.anonymity)
	if err != nil {
		return model.Filter{}, err
	}
	protocol, err := model.ParseProtocol(f.protocol)
	if err != nil {
		return model.Filter{}, err
	}
	return model.Filter{
		Country:   f.country,
		Port:      f.port,
		Anonymity: anonymity,
		Protocol:  protocol,
	}, nil
}

func run(ctx context.Context, cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := logger.InitWithWriter(cfg.LogConf, cmd.ErrOrStderr()); err != nil {
		return err
	}

	filter, err := buildFilter(f)
	if err != nil {
		return err
	}

	fetcher, err := proxypool.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	limited := cmd.Flags().Changed("limit")
	many := f.all || limited

	var results []model.URLs
	if many {
		var opts []proxypool.Option
		if limited {
			opts = append(opts, proxypool.WithLimit(f.limit))
		}
		results, err = fetcher.GetProxies(ctx, filter, opts...)
	} else {
		var u model.URLs
		u, err = fetcher.GetProxy(ctx, filter)
		results = []model.URLs{u}
	}
	if err != nil {
		return err
	}

	return printResults(cmd.OutOrStdout(), results, f.json, many)
}

func printResults(w io.Writer, results []model.URLs, asJSON, many bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		if many {
			return enc.Encode(results)
		}
		return enc.Encode(results[0])
	}
	for _, u := range results {
		if _, err := fmt.Fprintf(w, "http=%s https=%s\n", u.HTTP, u.HTTPS); err != nil {
			return err
		}
	}
	return nil
}
