// Package main is a demonstration driver for the interception engine.
// It builds a small Shape hierarchy, optionally applies a hook set
// file, and traces a handful of dispatches to stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dshills/splice"
	"github.com/dshills/splice/hookset"
	"github.com/dshills/splice/object"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	hooks := flag.String("hooks", "", "hook set file (.toml, .yaml) to apply")
	showVersion := flag.Bool("version", false, "print version and exit")
	watch := flag.Bool("watch", false, "keep running and reload the hook set on change")
	flag.Parse()

	if *showVersion {
		fmt.Printf("splice %s (%s)\n", version, commit)
		return 0
	}

	rt := object.NewRuntime()
	shape, circle, err := buildHierarchy(rt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: building hierarchy: %v\n", err)
		return 1
	}

	if *hooks != "" {
		if *watch {
			w, err := hookset.NewWatcher(rt, *hooks, log.Printf)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: watching %s: %v\n", *hooks, err)
				return 1
			}
			defer w.Close()
		} else {
			set, err := hookset.Load(*hooks)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: loading %s: %v\n", *hooks, err)
				return 1
			}
			applied, err := hookset.Apply(rt, set)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: applying %s: %v\n", *hooks, err)
				return 1
			}
			defer applied.Remove()
			fmt.Printf("applied %d hooks from %s\n", len(applied.Tokens()), *hooks)
		}
	}

	// A plain Go tracing hook alongside whatever the file installed.
	tok, err := splice.HookClass(shape, "describe", splice.Before, func(inv *object.Invocation) {
		fmt.Printf("  [hook] %s on a %s\n", inv.Selector, inv.Receiver().Class().Name())
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: hooking describe: %v\n", err)
		return 1
	}
	defer tok.Remove()

	if err := trace(rt, shape, circle); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// buildHierarchy creates Shape and Circle with area and describe
// methods. Circle overrides area.
func buildHierarchy(rt *object.Runtime) (shape, circle *object.Class, err error) {
	shape, err = rt.NewClass("Shape", nil)
	if err != nil {
		return nil, nil, err
	}
	circle, err = rt.NewClass("Circle", shape)
	if err != nil {
		return nil, nil, err
	}

	shape.AddMethod("area", object.NewGoFunc(nil, func(recv any, args []object.Value) (object.Value, error) {
		return object.Int(0), nil
	}))
	shape.AddMethod("describe", object.NewGoFunc(nil, func(recv any, args []object.Value) (object.Value, error) {
		obj := recv.(*object.Object)
		return object.Str(fmt.Sprintf("a %s", obj.Class().Name())), nil
	}))
	circle.AddMethod("area", object.NewGoFunc(
		object.Signature{{Kind: object.KindInt, Width: 8}},
		func(recv any, args []object.Value) (object.Value, error) {
			r := args[0].Int64()
			return object.Int(3 * r * r), nil
		}))
	return shape, circle, nil
}

// trace sends a few messages and prints results, including one
// per-instance hook that leaves a sibling untouched.
func trace(rt *object.Runtime, shape, circle *object.Class) error {
	c := circle.New()
	sibling := circle.New()

	for _, target := range []*object.Object{c, sibling} {
		desc, err := rt.Send(target, "describe")
		if err != nil {
			return err
		}
		area, err := rt.Send(target, "area", object.Int(10))
		if err != nil {
			return err
		}
		fmt.Printf("%s: area(10) = %d\n", desc.Str(), area.Int64())
	}

	tok, err := splice.HookInstance(c, "area", splice.After, func(inv *object.Invocation) {
		ret, _ := inv.Return()
		fmt.Printf("  [instance hook] area returned %d\n", ret.Int64())
	})
	if err != nil {
		return err
	}
	defer tok.Remove()

	fmt.Println("with an instance hook on the first circle:")
	for _, target := range []*object.Object{c, sibling} {
		if _, err := rt.Send(target, "area", object.Int(10)); err != nil {
			return err
		}
	}
	return nil
}
