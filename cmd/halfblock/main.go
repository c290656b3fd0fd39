package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/halfblock"
	"github.com/bodgit/halfblock/frame"
	"github.com/bodgit/halfblock/render"
	"github.com/urfave/cli/v2"
)

const defaultPrefix = "bad_apple_160x120_xterm256_chunk"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func decode(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	in, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer in.Close()

	src, err := halfblock.NewSource(in)
	if err != nil {
		return err
	}
	defer src.Close()

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if c.Bool("append") {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	out, err := os.OpenFile(c.Args().Get(1), flag, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	fw := frame.NewWriter(out)

	var w halfblock.FrameWriter = fw
	if db := c.String("db"); db != "" {
		catalog, err := halfblock.NewCatalog(db)
		if err != nil {
			return err
		}
		defer catalog.Close()

		// Keep catalog numbering in step with OUTPUT
		if !c.Bool("append") {
			if err := catalog.Reset(); err != nil {
				return err
			}
		}

		w = halfblock.MultiFrameWriter(fw, catalog)
	}

	d := halfblock.NewDecoder(w, logger)

	// Frames emitted before any error are still flushed
	err = d.Decode(src)
	if ferr := fw.Flush(); err == nil {
		err = ferr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	logger.Printf("Decoded %d frames\n", d.Frames())

	return nil
}

func split(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer f.Close()

	return halfblock.Split(context.Background(), f, c.Args().Get(1), c.String("prefix"), c.Int("workers"), newLogger(c))
}

func index(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	if c.String("db") == "" {
		return errors.New("no database given")
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	catalog, err := halfblock.NewCatalog(c.String("db"))
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.Import(f); err != nil {
		return err
	}

	frames, images, err := catalog.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("%d frames, %d unique\n", frames, images)

	return nil
}

func readFrames(file string, start, count int) ([]*frame.Frame, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(int64(start)*frame.Size, io.SeekStart); err != nil {
		return nil, err
	}

	r := frame.NewReader(f)
	var frames []*frame.Frame
	for count <= 0 || len(frames) < count {
		fr := new(frame.Frame)
		switch err := r.Read(fr); err {
		case nil:
			frames = append(frames, fr)
		case io.EOF:
			if len(frames) == 0 {
				return nil, fmt.Errorf("no frame %d in \"%s\"", start, file)
			}
			return frames, nil
		default:
			return nil, err
		}
	}
	return frames, nil
}

func export(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	file := c.Args().Get(1)
	ext := strings.ToLower(filepath.Ext(file))

	count := c.Int("count")
	if ext == ".png" {
		count = 1
	}

	frames, err := readFrames(c.Args().Get(0), c.Int("start"), count)
	if err != nil {
		return err
	}

	o := &render.Options{
		Delay:  c.Int("delay"),
		Colors: c.Int("colors"),
		Diff:   c.Bool("diff"),
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext {
	case ".gif":
		err = render.EncodeGIF(f, frames, o)
	case ".png":
		err = render.EncodePNG(f, frames[0], o)
	default:
		err = fmt.Errorf("unsupported format \"%s\"", ext)
	}
	if err != nil {
		return err
	}

	newLogger(c).Printf("Exported %d frames to \"%s\"\n", len(frames), file)

	return f.Close()
}

func text(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return err
	}

	var f *frame.Frame
	switch {
	case c.NArg() > 1:
		frames, err := readFrames(c.Args().Get(1), n, 1)
		if err != nil {
			return err
		}
		f = frames[0]
	case c.String("db") != "":
		catalog, err := halfblock.NewCatalog(c.String("db"))
		if err != nil {
			return err
		}
		defer catalog.Close()

		if f, err = catalog.Frame(int64(n)); err != nil {
			return err
		}
		if f == nil {
			return fmt.Errorf("no frame %d in catalog", n)
		}
	default:
		return errors.New("no file or database given")
	}

	return render.Text(os.Stdout, f, c.String("ramp"), c.Bool("inverse"))
}

func exit(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := action(c); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "halfblock"
	app.Usage = "Half block terminal animation decoder"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"HALFBLOCK_DB"},
			Usage:   "path to frame catalog",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "decode",
			Usage:       "Decode a transcript into raw frames",
			Description: "Reads a gzip, zstd or uncompressed terminal transcript and writes every frame it draws.",
			ArgsUsage:   "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "append",
					Usage: "append to OUTPUT rather than replacing it",
				},
			},
			Action: exit(decode),
		},
		{
			Name:        "split",
			Usage:       "Split raw frames into compressed chunks",
			Description: "",
			ArgsUsage:   "FILE DIRECTORY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "prefix",
					Value: defaultPrefix,
					Usage: "chunk filename prefix",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of compression workers",
				},
			},
			Action: exit(split),
		},
		{
			Name:        "index",
			Usage:       "Import raw frames into the frame catalog",
			Description: "",
			ArgsUsage:   "FILE",
			Action:      exit(index),
		},
		{
			Name:        "export",
			Usage:       "Export raw frames as an animated GIF or a PNG",
			Description: "",
			ArgsUsage:   "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "start",
					Usage: "first frame to export",
				},
				&cli.IntFlag{
					Name:  "count",
					Usage: "number of frames to export, 0 for all",
				},
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce each frame to this many colors",
				},
				&cli.BoolFlag{
					Name:  "diff",
					Usage: "mark pixels that changed since the previous frame",
				},
				&cli.IntFlag{
					Name:  "delay",
					Value: render.DefaultDelay,
					Usage: "delay between frames in 100ths of a second",
				},
			},
			Action: exit(export),
		},
		{
			Name:        "text",
			Usage:       "Print a frame as ASCII art",
			Description: "",
			ArgsUsage:   "FRAME [FILE]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "inverse",
					Usage: "use light characters for dark pixels",
				},
				&cli.StringFlag{
					Name:  "ramp",
					Value: render.DefaultRamp,
					Usage: "characters ordered from most to least ink",
				},
			},
			Action: exit(text),
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
