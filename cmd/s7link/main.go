// s7link is a small demo/test CLI: connect to one PLC named in the
// config file, read its configured tags, and print the values. It stays
// scoped to a single protocol with no gateway surface (no REST/MQTT/TUI).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"s7link/plcconfig"
	"s7link/s7"
	"s7link/s7addr"
	"s7link/tracelog"
)

var (
	configPath = flag.String("config", plcconfig.DefaultPath(), "Path to configuration file")
	plcName    = flag.String("plc", "", "Name of the PLC entry to connect to")
	debugLog   = flag.String("debug-log", "", "Path to write a wire-level trace log (empty disables tracing)")
	concurrent = flag.Bool("concurrent", false, "Read tags concurrently instead of in one batch")
	cpuInfo    = flag.Bool("cpu-info", false, "Read and print CPU module identification, then exit")
)

func main() {
	flag.Parse()

	if *debugLog != "" {
		logger, err := tracelog.New(*debugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "s7link: %v\n", err)
			os.Exit(1)
		}
		tracelog.SetGlobal(logger)
		defer logger.Close()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "s7link: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := plcconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *plcName == "" {
		return fmt.Errorf("must supply -plc")
	}
	plc, ok := cfg.Find(*plcName)
	if !ok {
		return fmt.Errorf("no PLC named %q in %s", *plcName, *configPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), plc.Timeout+5*time.Second)
	defer cancel()

	client, err := s7.Connect(ctx, plc.Host,
		s7.WithRackSlot(plc.Rack, plc.Slot),
		s7.WithOpenTimeout(plc.Timeout),
		s7.WithRequestTimeout(plc.Timeout),
	)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", plc.Host, err)
	}
	defer client.Close()

	fmt.Printf("connected: pdu_size=%d max_concurrent_jobs=%d\n", client.PDUSize(), client.MaxConcurrentJobs())

	if *cpuInfo {
		return printCPUInfo(ctx, client)
	}

	items, err := buildItems(plc.Tags)
	if err != nil {
		return err
	}

	if *concurrent {
		return readConcurrent(ctx, client, plc.Tags, items)
	}
	return readBatch(client, items, plc.Tags)
}

func buildItems(tags []plcconfig.TagSelection) ([]*s7addr.Item, error) {
	items := make([]*s7addr.Item, len(tags))
	for i, tag := range tags {
		count := tag.Count
		if count < 1 {
			count = 1
		}
		item, err := s7addr.NewArrayItem(tag.Address, tag.Type, count)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", tag.Name, err)
		}
		items[i] = item
	}
	return items, nil
}

func readBatch(client *s7.Client, items []*s7addr.Item, tags []plcconfig.TagSelection) error {
	ctx := context.Background()
	dataItems := make([]s7.DataItem, len(items))
	for i, it := range items {
		dataItems[i] = it
	}
	if err := client.Read(ctx, dataItems); err != nil {
		if itemErrs, ok := err.(*s7.ItemErrors); ok {
			for _, e := range itemErrs.Errors {
				fmt.Printf("%s: error %v\n", tags[e.ItemIndex].Name, e)
			}
		} else {
			return err
		}
	}
	for i, it := range items {
		fmt.Printf("%s = %v\n", tags[i].Name, it.GoValue())
	}
	return nil
}

// readConcurrent issues one Read per tag concurrently in an errgroup
// (no goroutine limit; the executor's job slots bound how many are in
// flight), exercising the executor's concurrent job-slot multiplexing
// with a library-managed goroutine group instead of a hand-rolled
// WaitGroup.
func readConcurrent(ctx context.Context, client *s7.Client, tags []plcconfig.TagSelection, items []*s7addr.Item) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		i := i
		g.Go(func() error {
			return client.Read(gctx, []s7.DataItem{items[i]})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, it := range items {
		fmt.Printf("%s = %v\n", tags[i].Name, it.GoValue())
	}
	return nil
}

func printCPUInfo(ctx context.Context, client *s7.Client) error {
	info, err := client.ReadCPUInfo(ctx)
	if err != nil {
		return fmt.Errorf("read cpu info: %w", err)
	}
	fmt.Printf("order code:       %s\n", info.OrderCode)
	fmt.Printf("module version:   %s\n", info.ModuleVersion)
	fmt.Printf("hardware version: %s\n", info.HardwareVersion)
	fmt.Printf("firmware version: %s\n", info.FirmwareVersion)
	return nil
}
