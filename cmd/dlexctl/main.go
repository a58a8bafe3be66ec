package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dlex-orders/internal/client"
	"dlex-orders/internal/model"
	"dlex-orders/internal/view"
	"dlex-orders/internal/worker"
)

const usage = `usage: dlexctl [-url base] [-timeout d] <command> [flags]

commands:
  list                                  print every order
  add -order o -customer c -product p   add an order
  operation -a o1 -pa p1 -b o2 -pb p2   update two orders in one transaction
  clear                                 delete every order
  stress -a o1 -b o2 -n 10 -workers 4   fire concurrent operations in alternating order
  render [-variant name]                print the list as the order page renders it
`

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Printf("msg=command_failed err=%q", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, logger *log.Logger) error {
	global := flag.NewFlagSet("dlexctl", flag.ContinueOnError)
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	baseURL := global.String("url", envOr("DLEX_URL", client.DefaultBaseURL), "base URL of the dlex site")
	timeout := global.Duration("timeout", 30*time.Second, "per-request timeout")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	api, err := client.New(*baseURL, client.WithTimeout(*timeout))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "list":
		return runList(ctx, api, out)
	case "add":
		return runAdd(ctx, api, rest, out)
	case "operation":
		return runOperation(ctx, api, rest, out)
	case "clear":
		env, err := api.DeleteOrders(ctx)
		if err != nil {
			return err
		}
		return printEnvelope(out, env)
	case "stress":
		return runStress(ctx, api, rest, out, logger)
	case "render":
		return runRender(ctx, api, rest, out)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runList(ctx context.Context, api *client.Client, out io.Writer) error {
	env, err := api.ListOrders(ctx)
	if err != nil {
		return err
	}
	for _, row := range env.Data {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", row.OrderName, row.CustomerName, row.ProductName, row.Datetime)
	}
	return printEnvelope(out, env)
}

func runAdd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	var order model.Order
	fs.StringVar(&order.OrderName, "order", "", "order name")
	fs.StringVar(&order.CustomerName, "customer", "", "customer name")
	fs.StringVar(&order.ProductName, "product", "", "product name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := api.AddOrder(ctx, order)
	if err != nil {
		return err
	}
	return printEnvelope(out, env)
}

func runOperation(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("operation", flag.ContinueOnError)
	a, b := pairFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := api.Operation(ctx, *a, *b)
	if err != nil {
		return err
	}
	return printEnvelope(out, env)
}

func runStress(ctx context.Context, api *client.Client, args []string, out io.Writer, logger *log.Logger) error {
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)
	a, b := pairFlags(fs)
	n := fs.Int("n", 10, "number of operations")
	workers := fs.Int("workers", 4, "concurrent workers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 1 || *workers < 1 {
		return errors.New("-n and -workers must be positive")
	}

	jobs := worker.AlternatingJobs(*n, *a, *b)
	queue := make(chan worker.Job, len(jobs))
	if err := worker.EnqueueAll(ctx, worker.ChannelEnqueuer{Ch: queue}, jobs); err != nil {
		return err
	}
	close(queue)

	start := time.Now()
	stats := &worker.Stats{}
	worker.RunPool(ctx, *workers, queue, api, stats, logger)

	summary := stats.Summary()
	fmt.Fprintf(out, "operations=%d succeeded=%d rejected=%d failed=%d elapsed=%s\n",
		summary.Total(), summary.Succeeded, summary.Rejected, summary.Failed, time.Since(start).Round(time.Millisecond))
	return nil
}

func runRender(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	variant := fs.String("variant", "list", "page variant: list, add, refresh or operation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts, ok := view.VariantByName(*variant)
	if !ok {
		return fmt.Errorf("unknown variant %q", *variant)
	}

	doc := view.NewPageDocument()
	if err := view.NewController(api, doc, opts).GetOrder(ctx); err != nil {
		return err
	}
	return renderPage(out, doc)
}

func renderPage(out io.Writer, doc *view.MemoryDocument) error {
	for _, id := range []string{view.IDMessages, view.IDErrorMessages} {
		if el := doc.Element(id); el.Visible() {
			fmt.Fprintf(out, "%s: %s\n", id, el.InnerHTML())
		}
	}
	_, err := fmt.Fprintln(out, doc.Element(view.IDOrderData).InnerHTML())
	return err
}

func pairFlags(fs *flag.FlagSet) (*model.OperationOrder, *model.OperationOrder) {
	var a, b model.OperationOrder
	fs.StringVar(&a.OrderName, "a", "", "first order name")
	fs.StringVar(&a.ProductName, "pa", "", "new product of the first order")
	fs.StringVar(&b.OrderName, "b", "", "second order name")
	fs.StringVar(&b.ProductName, "pb", "", "new product of the second order")
	return &a, &b
}

func printEnvelope(out io.Writer, env model.Envelope) error {
	result := "absent"
	if env.Result != nil {
		result = fmt.Sprint(*env.Result)
	}
	_, err := fmt.Fprintf(out, "result=%s message=%q\n", result, env.Message)
	if err == nil && env.Result != nil && !env.Succeeded() {
		return fmt.Errorf("request rejected: %s", env.Message)
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
