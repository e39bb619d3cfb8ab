package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	cli "github.com/jawher/mow.cli"

	"github.com/preciolens/backend/config"
	"github.com/preciolens/backend/internal/bootstrap"
	"github.com/preciolens/backend/internal/domain"
)

func main() {
	app := cli.App("eanlookup", "Look an EAN up on the reference site and every registered store")
	app.Spec = "[-d] [-v] EAN"

	var (
		deadline = app.StringOpt("d deadline", "", "overall lookup deadline, e.g. 3s (defaults to lookup.deadline)")
		verbose  = app.BoolOpt("v verbose", false, "print service logs")
		ean      = app.StringArg("EAN", "", "product EAN code")
	)

	app.Action = func() {
		if !*verbose {
			log.SetOutput(io.Discard)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
			cli.Exit(1)
		}
		if *deadline != "" {
			d, err := time.ParseDuration(*deadline)
			if err != nil || d <= 0 {
				fmt.Fprintf(os.Stderr, "invalid deadline %q\n", *deadline)
				cli.Exit(2)
			}
			cfg.Lookup.Deadline = d
		}

		services, err := bootstrap.Build(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "startup: %v\n", err)
			cli.Exit(1)
		}

		if err := resolve(context.Background(), services, *ean, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "lookup: %v\n", err)
			cli.Exit(1)
		}
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// resolve looks ean up and prints the result. services are closed before it
// returns, since cli.Exit skips deferred calls in the caller.
func resolve(ctx context.Context, services *bootstrap.Services, ean string, w io.Writer) error {
	defer services.Close()

	res, err := services.Lookup.ResolveProduct(ctx, ean)
	if err != nil {
		return err
	}
	printResolution(w, res)
	return nil
}

func printResolution(w io.Writer, res *domain.Resolution) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EAN\tNOMBRE\tPRECIO\tSERVIDOR")
	for _, item := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.EAN, item.ProductName, item.PriceText, item.Source)
	}
	tw.Flush()

	if len(res.Items) == 0 {
		fmt.Fprintln(w, "(no results)")
	}

	fmt.Fprintf(w, "\nPrecio sugerido: %s\n", res.SuggestedPrice)
	if res.ScrapeError != "" {
		fmt.Fprintf(w, "Referencia no disponible: %s\n", res.ScrapeError)
		return
	}
	if res.ScrapeDetails.Description != "" {
		fmt.Fprintf(w, "Descripcion: %s\n", res.ScrapeDetails.Description)
	}
	if res.ScrapeDetails.ImageURL != "" {
		fmt.Fprintf(w, "Imagen: %s\n", res.ScrapeDetails.ImageURL)
	}
}
