package main

import (
	"fmt"
	"os"
	"strings"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"bulkdir"
)

var listArgs struct {
	All        bool
	Long       bool
	JSON       bool
	BufferSize int
	NoFollow   bool
	NoColor    bool
}

var rootCmd = &cobra.Command{
	Use:           "bulkdir [flags] <path>",
	Short:         "List a directory using bulk attribute enumeration",
	Long:          "List a directory's entries and metadata with a single syscall per buffer-load instead of one stat per entry. Only available on macOS.",
	Args:          cobra.ExactArgs(1),
	RunE:          rootCmdRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&listArgs.All, "all", "a", false, "Request every available attribute and print the long listing")
	rootCmd.PersistentFlags().BoolVarP(&listArgs.Long, "long", "l", false, "Print type, permissions, size and modification time columns")
	rootCmd.PersistentFlags().BoolVar(&listArgs.JSON, "json", false, "Print one JSON object per entry")
	rootCmd.PersistentFlags().IntVar(&listArgs.BufferSize, "buffer-size", bulkdir.DefaultBufferSize, "Fetch buffer capacity in bytes; larger buffers mean fewer syscalls")
	rootCmd.PersistentFlags().BoolVar(&listArgs.NoFollow, "no-follow", false, "Do not follow symbolic links when reading attributes")
	rootCmd.PersistentFlags().BoolVar(&listArgs.NoColor, "no-color", false, "Disable colored output")
}

func main() {
	log.SetHandler(cli.Default)
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("bulkdir failed")
		os.Exit(1)
	}
}

func rootCmdRun(cmd *cobra.Command, args []string) error {
	if listArgs.NoColor {
		color.NoColor = true
	}

	attrs := bulkdir.RequestedAttributes{Name: true}
	if listArgs.Long {
		attrs.ObjectType = true
		attrs.Size = true
		attrs.ModifiedTime = true
		attrs.Permissions = true
	}
	if listArgs.All {
		attrs = bulkdir.AllAttributes()
		listArgs.Long = true
	}

	entries, err := bulkdir.NewReader(args[0]).
		Attributes(attrs).
		BufferSize(listArgs.BufferSize).
		FollowSymlinks(!listArgs.NoFollow).
		Read()
	if err != nil {
		return errors.Wrap(err, "failed to open directory")
	}
	defer entries.Close()

	enc := json.NewEncoder(os.Stdout)
	skipped := 0
	for entry, err := range entries.All() {
		if err != nil {
			if bulkdir.IsDecodeError(err) {
				log.WithError(err).Warn("skipping undecodable entry")
				skipped++
				continue
			}
			return errors.Wrap(err, "failed to enumerate directory")
		}

		switch {
		case listArgs.JSON:
			if err := enc.Encode(entry); err != nil {
				return errors.Wrap(err, "failed to encode entry")
			}
		case listArgs.Long:
			printLong(entry)
		default:
			fmt.Println(entry.Name)
		}
	}
	if skipped > 0 {
		log.Warnf("%d entries could not be decoded", skipped)
	}
	return nil
}

func printLong(entry bulkdir.DirEntry) {
	typeChar := "-"
	name := entry.Name
	if entry.ObjectType != nil {
		switch *entry.ObjectType {
		case bulkdir.Directory:
			typeChar = "d"
			name = color.BlueString(name)
		case bulkdir.Symlink:
			typeChar = "l"
			name = color.CyanString(name)
		case bulkdir.BlockDevice:
			typeChar = "b"
		case bulkdir.CharDevice:
			typeChar = "c"
		case bulkdir.Socket:
			typeChar = "s"
		case bulkdir.Fifo:
			typeChar = "p"
		}
	}

	perms := strings.Repeat(" ", 4)
	if entry.Permissions != nil {
		perms = fmt.Sprintf("%04o", *entry.Permissions&0o7777)
	}

	size := strings.Repeat(" ", 10)
	if entry.Size != nil {
		size = fmt.Sprintf("%10s", humanize.Bytes(*entry.Size))
	}

	modified := strings.Repeat(" ", 16)
	if entry.ModifiedTime != nil {
		modified = entry.ModifiedTime.Format("2006-01-02 15:04")
	}

	fmt.Printf("%s%s %s %s %s\n", typeChar, perms, size, modified, name)
}
