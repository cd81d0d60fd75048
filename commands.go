// This file is part of ifsession.
//
// ifsession is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ifsession is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ifsession.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/ifsession/autosave"
	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/metadata"
	"github.com/jetsetilly/ifsession/paths"
	"github.com/jetsetilly/ifsession/savedb"
	"github.com/jetsetilly/ifsession/snapshot"
	"github.com/jetsetilly/ifsession/story"
	"github.com/spf13/cobra"
)

func init() {
	inspect := &cobra.Command{
		Use:   "inspect <save file>",
		Short: "Describe a Quetzal save file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspect.Flags().String("story", "", "story file to decode the save against (default: session.storyFile)")
	inspect.Flags().Bool("dot", false, "output the decoded save as a graphviz document")
	rootCmd.AddCommand(inspect)

	verify := &cobra.Command{
		Use:   "verify [story file]",
		Short: "Check the header and checksum of a story file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVerify,
	}
	verify.Flags().String("catalog", "", "YAML catalog of story information")
	rootCmd.AddCommand(verify)

	slots := &cobra.Command{
		Use:   "slots [story file]",
		Short: "List the autosave slots for a story",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSlots,
	}
	rootCmd.AddCommand(slots)

	saves := &cobra.Command{
		Use:   "saves [story file]",
		Short: "List the saves in the save catalogue for a story",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSaves,
	}
	saves.Flags().String("delete", "", "delete the save with the ID")
	saves.Flags().Bool("clear-autosaves", false, "delete all autosaves for the story")
	rootCmd.AddCommand(saves)

	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show preferences",
		Args:  cobra.NoArgs,
		RunE:  runPrefs,
	}
	prefsCmd.Flags().Bool("save", false, "save preferences, including any overrides")
	rootCmd.AddCommand(prefsCmd)
}

// storyFromArgs loads the story named in the arguments or, if there are no
// arguments, the story in the preferences.
func storyFromArgs(args []string, flag string) (*story.Image, error) {
	pth := flag
	if len(args) > 0 {
		pth = args[0]
	}
	if pth == "" {
		p, err := loadPreferences()
		if err != nil {
			return nil, err
		}
		pth = p.StoryFile.Get().(string)
	}
	if pth == "" {
		return nil, curated.Errorf("no story file specified")
	}
	return story.Load(pth)
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	snp, err := snapshot.Parse(data)
	if err != nil {
		return err
	}

	dot, _ := cmd.Flags().GetBool("dot")
	storyFile, _ := cmd.Flags().GetString("story")

	var state *snapshot.State
	if storyFile != "" || dot {
		img, err := storyFromArgs(nil, storyFile)
		if err != nil {
			return err
		}
		st, err := snapshot.Decode(snp, img)
		if err != nil {
			return err
		}
		state = &st
	}

	if dot {
		memviz.Map(out, state)
		return nil
	}

	describe(out, snp)

	if state != nil {
		fmt.Fprintf(out, "decoded memory: %d bytes\n", len(state.Memory))
	}

	return nil
}

func describe(out io.Writer, snp *snapshot.Snapshot) {
	fmt.Fprintf(out, "release %d, serial %s, checksum %04x\n", snp.Release, snp.Serial, snp.Checksum)
	fmt.Fprintln(out, snp)
	if !snp.Timestamp.IsZero() {
		fmt.Fprintf(out, "saved %s\n", snp.Timestamp.Format("2006-01-02 15:04:05"))
	}
	if snp.Annotation != "" {
		fmt.Fprintf(out, "annotation: %s\n", snp.Annotation)
	}
	for i, f := range snp.Frames {
		fmt.Fprintf(out, "  frame %d: return %06x, %d args, %d locals, %d stack", i, f.ReturnPC, f.ArgCount, len(f.Locals), len(f.Stack))
		if f.Discard {
			fmt.Fprint(out, ", discard result")
		} else {
			fmt.Fprintf(out, ", result to %02x", f.ResultVar)
		}
		fmt.Fprintln(out)
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	img, err := storyFromArgs(args, "")
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", img.Identity())
	fmt.Fprintf(out, "version %d, %s\n", img.Version(), img)
	fmt.Fprintf(out, "%d bytes, %d bytes dynamic\n", img.Len(), img.DynamicLength())

	if computed := story.Checksum(img.Memory()); computed != img.Checksum() {
		fmt.Fprintf(out, "checksum mismatch: header %04x, computed %04x\n", img.Checksum(), computed)
	} else {
		fmt.Fprintln(out, "checksum ok")
	}

	if pth, _ := cmd.Flags().GetString("catalog"); pth != "" {
		cat, err := metadata.LoadCatalog(pth)
		if err != nil {
			return err
		}
		if info, ok := cat.Lookup(img.Identity()); ok {
			fmt.Fprintln(out, info)
		}
	}

	return nil
}

func runSlots(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	img, err := storyFromArgs(args, "")
	if err != nil {
		return err
	}

	p, err := loadPreferences()
	if err != nil {
		return err
	}
	dir := p.SlotDir.Get().(string)
	if dir == "" {
		dir, err = paths.ResourcePath("autosave", img.Identity())
		if err != nil {
			return err
		}
	}

	slots, err := autosave.Slots(dir)
	if err != nil {
		return err
	}

	for _, s := range slots {
		compatible := ""
		if s.StoryChecksum != img.Checksum() {
			compatible = " (different story)"
		}
		fmt.Fprintf(out, "%s%s\n", s, compatible)
	}

	if len(slots) == 0 {
		fmt.Fprintf(out, "no slots in %s\n", filepath.Clean(dir))
	}

	return nil
}

func runSaves(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := context.Background()

	img, err := storyFromArgs(args, "")
	if err != nil {
		return err
	}

	p, err := loadPreferences()
	if err != nil {
		return err
	}
	pth := p.Database.Get().(string)
	if pth == "" {
		return curated.Errorf("no save catalogue (session.database) specified")
	}

	db, err := savedb.Open(pth)
	if err != nil {
		return err
	}
	defer db.Close()

	identity := img.Identity()

	if id, _ := cmd.Flags().GetString("delete"); id != "" {
		if err := db.Delete(ctx, id); err != nil {
			return err
		}
	}

	if clr, _ := cmd.Flags().GetBool("clear-autosaves"); clr {
		if err := db.DeleteAutosaves(ctx, identity); err != nil {
			return err
		}
	}

	saves, err := db.List(ctx, identity)
	if err != nil {
		return err
	}
	for _, s := range saves {
		fmt.Fprintf(out, "%s  %s\n", s.ID, s)
	}

	n, err := db.CountAutosaves(ctx, identity)
	if err != nil {
		return err
	}
	d, err := db.PlayTime(ctx, identity)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d saves (%d autosaves), played for %s\n", len(saves), n, d)

	return nil
}

func runPrefs(cmd *cobra.Command, _ []string) error {
	p, err := loadPreferences()
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := p.Save(); err != nil {
			return err
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), p)
	return nil
}
