package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/noteservice"
	"github.com/starford/folio/internal/parser"
)

type serviceAction func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error

// withService opens the workspace for a single command and closes it
// afterwards. Logs go to stderr so stdout stays clean for output.
func withService(fn serviceAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ws, err := internal.OpenWorkspace(cfg, internal.NewLogger(os.Stderr, cfg.App.LogLevel))
		if err != nil {
			return err
		}
		defer ws.Close()
		return fn(ctx, cmd, ws.Service)
	}
}

func out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func fieldFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "field",
		Aliases: []string{"f"},
		Usage:   "Field value as name=value (repeatable)",
	}
}

// parseFields turns name=value pairs into a field map. "\n" in a value
// stands for a line break so bodies can be given on the command line.
func parseFields(pairs []string) (map[string]string, error) {
	fields := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("field %q: expected name=value", p)
		}
		fields[strings.TrimSpace(name)] = strings.ReplaceAll(value, `\n`, "\n")
	}
	return fields, nil
}

// mergeMarkdown reads a Markdown note and fills in the fields not already
// given on the command line.
func mergeMarkdown(cmd *cli.Command, path string, fields map[string]string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(res.Ignored) > 0 {
		fmt.Fprintf(cmd.Root().ErrWriter, "%s: ignored frontmatter keys: %s\n", path, strings.Join(res.Ignored, ", "))
	}
	for k, v := range fields {
		res.Fields[k] = v
	}
	return res.Fields, nil
}

func positionArg(cmd *cli.Command) (int, error) {
	if cmd.Args().Len() != 1 {
		return 0, errors.New("expected exactly one position argument")
	}
	pos, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return 0, fmt.Errorf("position %q is not a number", cmd.Args().First())
	}
	return pos, nil
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Append a note",
		Flags: []cli.Flag{
			fieldFlag(),
			&cli.StringFlag{Name: "from", Usage: "Markdown file with YAML frontmatter to read fields from; --field values win"},
		},
		Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
			fields, err := parseFields(cmd.StringSlice("field"))
			if err != nil {
				return err
			}
			if from := cmd.String("from"); from != "" {
				if fields, err = mergeMarkdown(cmd, from, fields); err != nil {
					return err
				}
			}
			note, err := svc.Create(ctx, fields)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out(cmd), "added %d: %s\n", note.Position, note.Fields[models.FieldTitle])
			return err
		}),
		// Field values may contain commas.
		DisableSliceFlagSeparator: true,
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes in collection order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "media", Aliases: []string{"m"}, Usage: "Only notes of this media type"},
		},
		Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
			notes, err := svc.List(ctx, cmd.String("media"))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tTITLE\tAUTHOR\tYEAR\tMEDIA")
			for _, n := range notes {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", n.Position,
					n.Fields[models.FieldTitle], n.Fields[models.FieldAuthor],
					n.Fields[models.FieldYear], n.Fields[models.FieldMediaType])
			}
			return tw.Flush()
		}),
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print every field of the note at a position",
		ArgsUsage: "<pos>",
		Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
			pos, err := positionArg(cmd)
			if err != nil {
				return err
			}
			note, err := svc.GetAt(ctx, pos)
			if err != nil {
				return err
			}
			for _, c := range models.Schema {
				value := note.Fields[c.Name]
				if c.Kind == models.KindText && value != "" {
					fmt.Fprintf(out(cmd), "%s:\n%s\n", c.Name, value)
					continue
				}
				fmt.Fprintf(out(cmd), "%s: %s\n", c.Name, value)
			}
			return nil
		}),
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change fields of the note at a position; the note moves to the end",
		ArgsUsage: "<pos>",
		Flags:     []cli.Flag{fieldFlag()},
		Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
			pos, err := positionArg(cmd)
			if err != nil {
				return err
			}
			fields, err := parseFields(cmd.StringSlice("field"))
			if err != nil {
				return err
			}
			note, deleted, err := svc.UpdateAt(ctx, pos, fields)
			if err != nil {
				return err
			}
			if deleted {
				_, err = fmt.Fprintf(out(cmd), "removed blank note %d\n", pos)
				return err
			}
			_, err = fmt.Fprintf(out(cmd), "updated %d: %s\n", note.Position, note.Fields[models.FieldTitle])
			return err
		}),
		// Field values may contain commas.
		DisableSliceFlagSeparator: true,
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove the note at a position",
		ArgsUsage: "<pos>",
		Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
			pos, err := positionArg(cmd)
			if err != nil {
				return err
			}
			if err := svc.DeleteAt(ctx, pos); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out(cmd), "removed %d\n", pos)
			return err
		}),
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search titles, authors, one-liners and bodies",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum number of results"},
		},
		Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return errors.New("search query is required")
			}
			results, err := svc.Search(ctx, query, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tTITLE\tAUTHOR\tSNIPPET")
			for _, r := range results {
				snippet := strings.Join(strings.Fields(r.Snippet), " ")
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Position, r.Title, r.Author, snippet)
			}
			return tw.Flush()
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the PDF booklet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: ".pdf output path (defaults to the saved output location)"},
		},
		Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
			path, err := svc.Export(ctx, cmd.String("out"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out(cmd), "exported %s\n", path)
			return err
		}),
	}
}

func outputCommand() *cli.Command {
	return &cli.Command{
		Name:  "output",
		Usage: "Show or change where the booklet is written",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the saved output location",
				Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
					o, err := svc.Output(ctx)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out(cmd), o.Path())
					return err
				}),
			},
			{
				Name:      "set",
				Usage:     "Save a new output location",
				ArgsUsage: "<path>",
				Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
					if cmd.Args().Len() != 1 {
						return errors.New("expected exactly one path argument")
					}
					o, err := svc.SetOutput(ctx, cmd.Args().First())
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(out(cmd), "output set to %s\n", o.Path())
					return err
				}),
			},
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "List the note fields in order",
		Action: func(_ context.Context, cmd *cli.Command) error {
			for _, c := range models.Schema {
				line := fmt.Sprintf("%s\t%s", c.Name, c.Kind)
				if len(c.Values) > 0 {
					quoted := make([]string, len(c.Values))
					for i, v := range c.Values {
						quoted[i] = strconv.Quote(v)
					}
					line += "\t" + strings.Join(quoted, ", ")
				}
				if _, err := fmt.Fprintln(out(cmd), line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
