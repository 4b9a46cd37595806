package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/theme"
	"gopkg.in/yaml.v3"
)

func printPanelUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snapdesk panel create [--kind KIND] [--icon ICON] [--persist KEY] [--size WxH] [--at X,Y] <title>")
	fmt.Fprintln(w, "  snapdesk panel list [--json]")
	fmt.Fprintln(w, "  snapdesk panel focus <id>")
	fmt.Fprintln(w, "  snapdesk panel minimize <id>")
	fmt.Fprintln(w, "  snapdesk panel restore <id>")
	fmt.Fprintln(w, "  snapdesk panel close <id>")
	fmt.Fprintln(w, "  snapdesk panel snap <id> <region|none|full-toggle>")
	fmt.Fprintln(w, "  snapdesk panel layouts")
	fmt.Fprintln(w, "  snapdesk panel forget <persist-key>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Regions: left, right, top-left, top-right, bottom-left, bottom-right, full")
}

func runPanel(args []string) int {
	if len(args) == 0 {
		printPanelUsage(os.Stderr)
		return 2
	}
	client := ipc.NewClient()

	switch args[0] {
	case "create":
		return runPanelCreate(client, args[1:])
	case "list":
		return runPanelList(client, args[1:])
	case "focus":
		return runPanelOp(args[1:], "focus", client.Focus)
	case "minimize":
		return runPanelOp(args[1:], "minimize", client.Minimize)
	case "restore":
		return runPanelOp(args[1:], "restore", client.Restore)
	case "close":
		return runPanelOp(args[1:], "close", client.Close)
	case "snap":
		return runPanelSnap(client, args[1:])
	case "layouts":
		return runPanelLayouts(client, args[1:])
	case "forget":
		return runPanelOp(args[1:], "forget", client.Forget)
	case "help", "-h", "--help":
		printPanelUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown panel command: %s\n\n", args[0])
		printPanelUsage(os.Stderr)
		return 2
	}
}

func runPanelCreate(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	kind := fs.String("kind", "standard", "Panel kind: standard, widget, browser, file-manager, editor, control-panel")
	icon := fs.String("icon", "", "Icon name shown in the dock")
	persist := fs.String("persist", "", "Key under which the panel's geometry is remembered")
	size := fs.String("size", "", "Initial size as WxH (default: the kind's default size)")
	at := fs.String("at", "", "Initial position as X,Y (default: centered)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "create requires exactly one <title>")
		return 2
	}

	k, err := panel.ParseKind(*kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	d := panel.Descriptor{Title: fs.Arg(0), Kind: k, Icon: *icon, PersistKey: *persist}
	if *size != "" {
		if _, err := fmt.Sscanf(*size, "%dx%d", &d.Width, &d.Height); err != nil {
			fmt.Fprintf(os.Stderr, "invalid --size %q: want WxH\n", *size)
			return 2
		}
	}
	if *at != "" {
		var pt geometry.Point
		if _, err := fmt.Sscanf(*at, "%d,%d", &pt.X, &pt.Y); err != nil {
			fmt.Fprintf(os.Stderr, "invalid --at %q: want X,Y\n", *at)
			return 2
		}
		d.Position = &pt
	}

	ctx, cancel := withTimeout()
	defer cancel()
	id, err := client.CreatePanel(ctx, d)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(id)
	return 0
}

func runPanelList(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	ctx, cancel := withTimeout()
	defer cancel()
	data, err := client.ListPanels(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tKIND\tGEOMETRY\tZ\tSTATE")
	for _, p := range data.Panels {
		state := string(p.SnapState)
		switch {
		case p.Minimized:
			state = "minimized"
		case p.Focused:
			state += ",focused"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Title, p.Kind, p.Geometry, p.ZIndex, state)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPanelOp(args []string, name string, op func(context.Context, string) (bool, error)) int {
	if len(args) != 1 || isHelp(args) {
		arg := "id"
		if name == "forget" {
			arg = "persist-key"
		}
		fmt.Fprintf(os.Stderr, "Usage: snapdesk panel %s <%s>\n", name, arg)
		return 2
	}

	ctx, cancel := withTimeout()
	defer cancel()
	changed, err := op(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !changed {
		fmt.Printf("%s: nothing to do for %s\n", name, args[0])
	}
	return 0
}

func runPanelSnap(client *ipc.Client, args []string) int {
	if len(args) != 2 || isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: snapdesk panel snap <id> <region|none|full-toggle>")
		return 2
	}
	region := strings.ToLower(strings.TrimSpace(args[1]))
	if region != ipc.RegionToggleFull {
		if _, err := geometry.ParseRegion(region); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	ctx, cancel := withTimeout()
	defer cancel()
	res, err := client.Snap(ctx, args[0], region)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !res.Changed {
		fmt.Printf("snap: nothing to do for %s\n", args[0])
		return 0
	}
	fmt.Printf("%s: %s\n", args[0], res.Region)
	return 0
}

func runPanelLayouts(client *ipc.Client, args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: snapdesk panel layouts")
		return 2
	}

	ctx, cancel := withTimeout()
	defer cancel()
	keys, err := client.Layouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return 0
}

func runPointer(args []string) int {
	fs := flag.NewFlagSet("pointer", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	noSnap := fs.Bool("no-snap", false, "Hold the snap-disabling modifier")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapdesk pointer [--no-snap] <down|move|up|dblclick> <x> <y>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Feed a pointer event to the daemon, as a compositor front end would.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}

	typ, err := desktop.ParsePointerType(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	ev := desktop.PointerEvent{Type: typ, DisableSnap: *noSnap}
	if _, err := fmt.Sscanf(fs.Arg(1)+" "+fs.Arg(2), "%d %d", &ev.X, &ev.Y); err != nil {
		fmt.Fprintf(os.Stderr, "invalid coordinates %q %q\n", fs.Arg(1), fs.Arg(2))
		return 2
	}

	ctx, cancel := withTimeout()
	defer cancel()
	res, err := ipc.NewClient().Pointer(ctx, ev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if res.Hit != nil {
		fmt.Printf("%s %s (%s)\n", res.Action, res.Hit.PanelID, res.Hit.Part)
		return 0
	}
	fmt.Println(res.Action)
	return 0
}

func runDock(args []string) int {
	fs := flag.NewFlagSet("dock", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	ctx, cancel := withTimeout()
	defer cancel()
	view, err := ipc.NewClient().GetDock(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		out, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if view.Hidden {
		fmt.Println("dock: empty")
	}
	for _, item := range view.Items {
		fmt.Printf("%s\t%s\t%s\n", item.ID, item.Title, item.Icon)
	}
	if view.EmptyDesktop {
		fmt.Println("desktop: no visible panels")
	}
	return 0
}

func runTheme(args []string) int {
	fs := flag.NewFlagSet("theme", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	name := fs.String("name", "", "Theme name")
	accent := fs.String("accent", "", "Accent color (#rrggbb) to derive the theme from")
	file := fs.String("file", "", "YAML file holding a complete theme")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapdesk theme [--name NAME --accent #RRGGBB | --file THEME.yaml]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without flags, print the active theme name.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	client := ipc.NewClient()
	ctx, cancel := withTimeout()
	defer cancel()

	if *accent == "" && *file == "" {
		status, err := client.GetStatus(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(status.Theme)
		return 0
	}

	payload := ipc.SetThemePayload{Name: *name, Accent: *accent}
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		var t theme.Theme
		if err := yaml.Unmarshal(data, &t); err != nil {
			fmt.Fprintf(os.Stderr, "parse %s: %v\n", *file, err)
			return 1
		}
		if *name != "" {
			t.Name = *name
		}
		payload = ipc.SetThemePayload{Theme: &t}
	}

	t, err := client.SetTheme(ctx, payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	out, err := yaml.Marshal(t)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(string(out))
	return 0
}
