package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/natefinch/atomic"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"github.com/roomandroom/roomandroom-server/internal/service"
)

var (
	order      string
	sitemapOut string
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List rooms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		o, err := domain.ParseSortOrder(order)
		if err != nil {
			return err
		}
		gallery, err := do.Invoke[*service.GalleryService](container())
		if err != nil {
			return err
		}
		rooms, err := gallery.Rooms(cmd.Context(), o)
		if err != nil {
			return err
		}
		return printRooms(cmd.OutOrStdout(), rooms)
	},
}

var navCmd = &cobra.Command{
	Use:   "nav <roomNo> <slot>",
	Short: "Resolve a room position and its neighbours",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := domain.ParseSortOrder(order)
		if err != nil {
			return err
		}
		gallery, err := do.Invoke[*service.GalleryService](container())
		if err != nil {
			return err
		}
		nav, err := gallery.Room(cmd.Context(), o, args[0], args[1])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "room*%s %s (%s)\n", nav.Position.RoomNo, navigation.PadSlot(nav.Position.Slot), nav.Room.Title)
		if nav.Photo != nil {
			fmt.Fprintf(w, "photo: %s [%s]\n", nav.Photo.Caption, strings.Join(nav.Photo.Tags, ", "))
		} else {
			fmt.Fprintln(w, "photo: profile")
		}
		fmt.Fprintf(w, "prev:  %s\n", nav.Prev)
		fmt.Fprintf(w, "next:  %s\n", nav.Next)
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags [tag]",
	Short: "List tags with their photo counts, or the photos carrying one tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gallery, err := do.Invoke[*service.GalleryService](container())
		if err != nil {
			return err
		}

		if len(args) == 1 {
			seq, err := gallery.TagPhotos(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printTagPhotos(cmd.OutOrStdout(), seq)
		}

		tags, err := gallery.Tags(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TAG\tCOUNT\tFIRST ROOM")
		for _, t := range tags {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Tag, t.Count, t.RoomNo)
		}
		return tw.Flush()
	},
}

var tagNavCmd = &cobra.Command{
	Use:   "tag-nav <tag> <index>",
	Short: "Resolve a position in a tag sequence",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		gallery, err := do.Invoke[*service.GalleryService](container())
		if err != nil {
			return err
		}
		nav, err := gallery.Tag(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s / %s\n", nav.Tag, navigation.PadSlot(nav.Index), navigation.PadSlot(nav.Total))
		fmt.Fprintf(w, "photo: %s (room*%s %s)\n", nav.Photo.Photo.Caption, nav.Photo.RoomNo, navigation.PadSlot(nav.Photo.Slot))
		fmt.Fprintf(w, "prev:  %s\n", tagDestination(nav.Prev))
		fmt.Fprintf(w, "next:  %s\n", tagDestination(nav.Next))
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post <id>",
	Short: "Print a blog post as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post id %q", args[0])
		}
		blog, err := do.Invoke[*service.BlogService](container())
		if err != nil {
			return err
		}
		md, err := blog.Markdown(cmd.Context(), id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), md)
		return err
	},
}

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Build sitemap.xml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sitemap, err := do.Invoke[*service.SitemapService](container())
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := sitemap.Build(cmd.Context()).WriteXML(&buf); err != nil {
			return err
		}

		if sitemapOut == "" || sitemapOut == "-" {
			_, err = io.Copy(cmd.OutOrStdout(), &buf)
			return err
		}
		if err := atomic.WriteFile(sitemapOut, &buf); err != nil {
			return fmt.Errorf("write %s: %w", sitemapOut, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", sitemapOut)
		return nil
	},
}

func init() {
	roomsCmd.Flags().StringVar(&order, "order", "asc", "Sort order (asc or desc)")
	navCmd.Flags().StringVar(&order, "order", "asc", "Catalog order used for prev/next")
	sitemapCmd.Flags().StringVarP(&sitemapOut, "output", "o", "", "Write to this file instead of stdout")
}

func printRooms(w io.Writer, rooms []service.RoomSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tTITLE\tROOM BY\tPHOTO BY\tPHOTOS\tFIRST")
	for _, r := range rooms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", r.RoomNo, r.Title, r.RoomBy, r.PhotoBy, r.PhotoCount, r.First)
	}
	return tw.Flush()
}

func printTagPhotos(w io.Writer, seq []navigation.TaggedPhoto) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tROOM\tSLOT\tCAPTION")
	for _, p := range seq {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", navigation.PadSlot(p.Index), p.RoomNo, navigation.PadSlot(p.Slot), p.Photo.Caption)
	}
	return tw.Flush()
}

func tagDestination(d navigation.TagDestination) string {
	if d.Terminal {
		return "terminal"
	}
	return navigation.PadSlot(d.Index)
}
