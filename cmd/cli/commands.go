package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/monitor"
	"github.com/hamed0406/netmonitor/internal/repo"
)

type client struct {
	base string
	http *http.Client
}

func (c *client) get(path string, out any) error {
	resp, err := c.http.Get(strings.TrimRight(c.base, "/") + path)
	if err != nil {
		return fmt.Errorf("contact API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("API returned %s: %s", resp.Status, e.Error)
		}
		return fmt.Errorf("API returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func newRootCmd() *cobra.Command {
	c := &client{http: &http.Client{Timeout: 60 * time.Second}}
	var asJSON bool

	root := &cobra.Command{
		Use:           "netmonitor",
		Short:         "Query a running netmonitor API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	def := os.Getenv("API_BASE")
	if def == "" {
		def = "http://localhost:3001"
	}
	root.PersistentFlags().StringVar(&c.base, "api", def, "API base URL (env API_BASE)")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	root.AddCommand(newStatusCmd(c, &asJSON), newHistoryCmd(c, &asJSON), newSummaryCmd(c, &asJSON))
	return root
}

func newStatusCmd(c *client, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:       "status servers|uplinks",
		Short:     "Probe every server or uplink now",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"servers", "uplinks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[0])
			}
			path := "/api/servers/status"
			if kind == domain.KindUplink {
				path = "/api/uplinks/status"
			}
			var sts []domain.EntityStatus
			if err := c.get(path, &sts); err != nil {
				return err
			}
			if *asJSON {
				return printJSON(cmd.OutOrStdout(), sts)
			}
			printStatuses(cmd.OutOrStdout(), sts)
			return nil
		},
	}
}

func newHistoryCmd(c *client, asJSON *bool) *cobra.Command {
	var rng string
	cmd := &cobra.Command{
		Use:   "history <kind> <id|server:service>",
		Short: "Show the retained samples of one server or uplink",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res repo.HistoryResult
			path := fmt.Sprintf("/api/metrics/%s/%s?timeRange=%s",
				url.PathEscape(args[0]), url.PathEscape(args[1]), url.QueryEscape(rng))
			if err := c.get(path, &res); err != nil {
				return err
			}
			if *asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printHistory(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&rng, "range", string(repo.DefaultRange), "time range: 15m, 1h, 6h or 24h")
	return cmd
}

func newSummaryCmd(c *client, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show current status, average latency and uptime per entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sum monitor.MetricsSummary
			if err := c.get("/api/metrics/summary", &sum); err != nil {
				return err
			}
			if *asJSON {
				return printJSON(cmd.OutOrStdout(), sum)
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func latency(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return fmt.Sprintf("%d ms", *ms)
}

func printStatuses(w io.Writer, sts []domain.EntityStatus) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tLATENCY\tDETAIL")
	for _, st := range sts {
		detail := st.Location
		if len(st.Services) > 0 {
			up := 0
			for _, svc := range st.Services {
				if svc.Level != domain.LevelUnreachable {
					up++
				}
			}
			detail = fmt.Sprintf("%d/%d services up", up, len(st.Services))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", st.ID, st.Name, st.Level, latency(st.LatencyMS), detail)
	}
	_ = tw.Flush()
}

func printHistory(w io.Writer, res repo.HistoryResult) {
	s := res.Summary
	fmt.Fprintf(w, "%s %s over %s: %d points, uptime %d%%, latency avg %d / min %d / max %d ms\n",
		res.Kind, res.ID, res.TimeRange, s.TotalPoints, s.Uptime, s.AvgLatency, s.MinLatency, s.MaxLatency)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tLATENCY")
	for _, p := range res.Points {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Timestamp.Local().Format(time.DateTime), p.Level, latency(p.LatencyMS))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, sum monitor.MetricsSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tID\tNAME\tSTATUS\tAVG\tUPTIME")
	row := func(kind string, e monitor.EntitySummary) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d ms\t%d%%\n", kind, e.ID, e.Name, e.CurrentStatus, e.AvgLatency, e.Uptime)
	}
	for _, e := range sum.Servers {
		row("server", e)
	}
	for _, e := range sum.Uplinks {
		row("uplink", e)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "retained points: %d\n", sum.TotalRetainedPoints)
}
