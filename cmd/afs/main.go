package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/weberc2/afs/pkg/api"
	"github.com/weberc2/afs/pkg/filesystem"
	"github.com/weberc2/afs/pkg/objectstore"
	"github.com/weberc2/afs/pkg/snapshot"
	. "github.com/weberc2/afs/pkg/types"
	pz "github.com/weberc2/httpeasy"
)

type FileSystem = filesystem.FileSystem

func main() {
	log.SetPrefix(fmt.Sprintf("afs[%s] ", uuid.New()))

	app := cli.App{
		Name:        appName,
		Usage:       "inspect and modify AFS disk images",
		Description: "a command line interface to AFS disk images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "disk",
				Aliases: []string{"d"},
				Usage:   "the path to the disk image",
			},
			&cli.Int64Flag{
				Name:  "block-size",
				Usage: "the block size used when creating a new image",
			},
			&cli.UintFlag{
				Name:  "block-count",
				Usage: "the block count used when creating a new image",
			},
		},
		Commands: []*cli.Command{{
			Name:        "shell",
			Description: "run an interactive shell against the image",
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				sh := Shell{
					FileSystem: fs,
					In:         bufio.NewScanner(os.Stdin),
					Out:        os.Stdout,
					Prompt:     ">>> ",
				}
				return sh.Run()
			}),
		}, {
			Name:        "touch",
			Description: "create an empty file",
			ArgsUsage:   "<path>",
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path, err := pathArg(ctx)
				if err != nil {
					return err
				}
				return fs.CreateFile(path, false)
			}),
		}, {
			Name:        "mkdir",
			Description: "create an empty directory",
			ArgsUsage:   "<path>",
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path, err := pathArg(ctx)
				if err != nil {
					return err
				}
				return fs.CreateFile(path, true)
			}),
		}, {
			Name:        "rm",
			Aliases:     []string{"delete", "remove"},
			Description: "delete a file or a directory and everything in it",
			ArgsUsage:   "<path>",
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path, err := pathArg(ctx)
				if err != nil {
					return err
				}
				return fs.DeleteFile(path)
			}),
		}, {
			Name:        "ls",
			Aliases:     []string{"list"},
			Description: "list the entries of a directory",
			ArgsUsage:   "[<path>]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "json", Usage: "print entries as JSON"},
			},
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path := "/"
				if ctx.Args().Present() {
					path = ctx.Args().First()
				}
				entries, err := fs.ListDir(path)
				if err != nil {
					return err
				}
				if ctx.Bool("json") {
					return printJSON(entries)
				}
				return writeEntries(os.Stdout, entries)
			}),
		}, {
			Name:        "cat",
			Description: "print the content of a file",
			ArgsUsage:   "<path>",
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path, err := pathArg(ctx)
				if err != nil {
					return err
				}
				data, err := fs.GetContent(path)
				if err != nil {
					return err
				}
				if _, err := os.Stdout.Write(data); err != nil {
					return fmt.Errorf("writing content to stdout: %w", err)
				}
				return nil
			}),
		}, {
			Name: "append",
			Description: "append to a file; reads stdin unless `--text` is " +
				"given",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "text", Usage: "the text to append"},
			},
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path, err := pathArg(ctx)
				if err != nil {
					return err
				}
				data := []byte(ctx.String("text"))
				if !ctx.IsSet("text") {
					if data, err = ioutil.ReadAll(os.Stdin); err != nil {
						return fmt.Errorf("reading stdin: %w", err)
					}
				}
				return fs.AppendContent(path, data)
			}),
		}, {
			Name: "edit",
			Description: "append to a file by editing it in `$EDITOR`, or " +
				"from stdin lines up to the first empty line",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "stdin",
					Usage: "read lines from stdin instead of opening an editor",
				},
			},
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path, err := pathArg(ctx)
				if err != nil {
					return err
				}
				if !ctx.Bool("stdin") {
					return editFile(ctx.Context, fs, path)
				}
				text, err := readParagraph(bufio.NewScanner(os.Stdin))
				if err != nil {
					return err
				}
				return fs.AppendContent(path, []byte(text))
			}),
		}, {
			Name:        "stat",
			Description: "print the inode behind a path",
			ArgsUsage:   "<path>",
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				path, err := pathArg(ctx)
				if err != nil {
					return err
				}
				stat, err := fs.Stat(path)
				if err != nil {
					return err
				}
				return printJSON(stat)
			}),
		}, {
			Name:        "usage",
			Aliases:     []string{"df"},
			Description: "print block and inode usage of the image",
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				usage, err := fs.Usage()
				if err != nil {
					return err
				}
				return printJSON(usage)
			}),
		}, {
			Name:        "serve",
			Description: "serve the image over HTTP",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "addr", Usage: "the address to listen on"},
			},
			Action: withFileSystem(func(fs *FileSystem, ctx *cli.Context) error {
				c, err := config(ctx)
				if err != nil {
					return err
				}
				addr := c.Addr
				if ctx.IsSet("addr") {
					addr = ctx.String("addr")
				}
				log.Printf(`{"message": "listening on %s"}`, addr)
				if err := http.ListenAndServe(
					addr,
					pz.Register(pz.JSONLog(os.Stderr), api.New(fs).Routes()...),
				); err != nil {
					return fmt.Errorf("starting server: %w", err)
				}
				return nil
			}),
		}, {
			Name:        "snapshot",
			Description: "commands for copying images to and from storage",
			Subcommands: []*cli.Command{{
				Name:        "push",
				Description: "upload the image as a new snapshot",
				Action: withSnapshots(func(store *snapshot.Store, c *Config, ctx *cli.Context) error {
					snap, err := store.Push(c.Disk)
					if err != nil {
						return err
					}
					return printJSON(snap)
				}),
			}, {
				Name:        "pull",
				Description: "download a snapshot to the image path",
				ArgsUsage:   "<key>",
				Action: withSnapshots(func(store *snapshot.Store, c *Config, ctx *cli.Context) error {
					key := ctx.Args().First()
					if key == "" {
						return fmt.Errorf("missing required argument: <key>")
					}
					return store.Pull(key, c.Disk)
				}),
			}, {
				Name:        "delete",
				Aliases:     []string{"rm", "remove"},
				Description: "delete a snapshot",
				ArgsUsage:   "<key>",
				Action: withSnapshots(func(store *snapshot.Store, c *Config, ctx *cli.Context) error {
					key := ctx.Args().First()
					if key == "" {
						return fmt.Errorf("missing required argument: <key>")
					}
					return store.Delete(key)
				}),
			}, {
				Name:        "list",
				Aliases:     []string{"ls"},
				Description: "list the snapshots of the image",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "list the snapshots of every image",
					},
				},
				Action: withSnapshots(func(store *snapshot.Store, c *Config, ctx *cli.Context) error {
					image := snapshot.ImageName(c.Disk)
					if ctx.Bool("all") {
						image = ""
					}
					snaps, err := store.List(image)
					if err != nil {
						return err
					}
					return printJSON(snaps)
				}),
			}},
		}},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// config loads the configuration and applies the global flags over it.
func config(ctx *cli.Context) (*Config, error) {
	c, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if ctx.IsSet("disk") {
		c.Disk = ctx.String("disk")
	}
	if ctx.IsSet("block-size") {
		c.BlockSize = Byte(ctx.Int64("block-size"))
	}
	if ctx.IsSet("block-count") {
		c.BlockCount = Block(ctx.Uint("block-count"))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func withFileSystem(
	f func(*FileSystem, *cli.Context) error,
) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		c, err := config(ctx)
		if err != nil {
			return err
		}
		fs, err := filesystem.Open(c.Disk, c.BlockSize, c.BlockCount)
		if err != nil {
			return err
		}
		defer func() {
			if err := fs.Close(); err != nil {
				log.Printf("closing image `%s`: %v", c.Disk, err)
			}
		}()
		return f(fs, ctx)
	}
}

func withSnapshots(
	f func(*snapshot.Store, *Config, *cli.Context) error,
) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		c, err := config(ctx)
		if err != nil {
			return err
		}

		var objects ObjectStore
		bucket := c.SnapshotBucket
		if bucket != "" {
			if objects, err = objectstore.NewS3ObjectStore(
				c.SnapshotRegion,
			); err != nil {
				return err
			}
		} else {
			objects = &objectstore.DirObjectStore{Root: c.SnapshotDir}
			bucket = "local"
		}
		return f(snapshot.New(objects, bucket, c.SnapshotPrefix), c, ctx)
	}
}

func pathArg(ctx *cli.Context) (string, error) {
	if !ctx.Args().Present() {
		return "", fmt.Errorf("missing required argument: <path>")
	}
	return ctx.Args().First(), nil
}

func printJSON(x interface{}) error {
	data, err := json.MarshalIndent(x, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling to JSON: %w", err)
	}
	if _, err := fmt.Printf("%s\n", data); err != nil {
		return fmt.Errorf("writing JSON to stdout: %w", err)
	}
	return nil
}
