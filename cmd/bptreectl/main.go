// Command bptreectl is an interactive REPL over an in-process, string-keyed
// B+-tree: set/get/del/range/len/graph/load, modeled on novasql's readline
// client shape but talking to an in-memory tree instead of a TCP server.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/daicang/bptree/internal/bptree"
	"github.com/daicang/bptree/internal/config"
)

type store struct {
	tree *bptree.Tree[string, string]
}

func newStore(cfg *config.Config) *store {
	opts := bptree.Options{
		PageBytes:      cfg.Tree.PageBytes,
		MinFanoutFloor: cfg.Tree.MinFanoutFloor,
	}
	return &store{tree: bptree.NewTree[string, string](strLess, opts)}
}

func strLess(a, b string) bool { return a < b }

// ---- history (own file, same shape as novasql's client) ----

type history struct {
	path  string
	lines []string
}

func newHistory(path string) *history {
	return &history{path: path}
}

func (h *history) load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *history) append(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, cmd); err != nil {
		return err
	}
	h.lines = append(h.lines, cmd)
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".bptreectl_history"
	}
	return filepath.Join(home, ".bptreectl_history")
}

// ---- command dispatch ----

func (s *store) exec(line string, out *strings.Builder) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "set":
		if len(fields) < 3 {
			return fmt.Errorf("usage: set <key> <value>")
		}
		_, inserted, err := s.tree.Insert(fields[1], strings.Join(fields[2:], " "))
		if err != nil {
			return err
		}
		if inserted {
			fmt.Fprintln(out, "OK")
		} else {
			fmt.Fprintln(out, "EXISTS")
		}

	case "get":
		if len(fields) != 2 {
			return fmt.Errorf("usage: get <key>")
		}
		v, ok := s.tree.Get(fields[1])
		if !ok {
			fmt.Fprintln(out, "(nil)")
			return nil
		}
		fmt.Fprintln(out, v)

	case "del":
		if len(fields) != 2 {
			return fmt.Errorf("usage: del <key>")
		}
		_, ok := s.tree.Remove(fields[1])
		if ok {
			fmt.Fprintln(out, "OK")
		} else {
			fmt.Fprintln(out, "NOTFOUND")
		}

	case "range":
		if len(fields) != 3 {
			return fmt.Errorf("usage: range <lo> <hi>")
		}
		c := s.tree.LowerBound(fields[1])
		for !c.IsEnd() && c.Key() < fields[2] {
			fmt.Fprintf(out, "%s\t%s\n", c.Key(), c.Value())
			c = s.tree.UpperBound(c.Key())
		}

	case "len":
		fmt.Fprintln(out, strconv.Itoa(s.tree.Len()))

	case "clear":
		s.tree.Clear()
		fmt.Fprintln(out, "OK")

	case "graph":
		if len(fields) != 2 {
			return fmt.Errorf("usage: graph <path>")
		}
		f, err := os.Create(fields[1])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := s.tree.ToGraph(f); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", fields[1])

	case "load":
		if len(fields) != 2 {
			return fmt.Errorf("usage: load <path>")
		}
		return s.loadFile(fields[1], out)

	default:
		return fmt.Errorf("unknown command: %s", fields[0])
	}
	return nil
}

func (s *store) loadFile(path string, out *strings.Builder) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.SplitN(strings.TrimSpace(sc.Text()), " ", 2)
		if len(fields) != 2 || fields[0] == "" {
			continue
		}
		if _, _, err := s.tree.Insert(fields[0], fields[1]); err != nil {
			return err
		}
		n++
	}
	fmt.Fprintf(out, "loaded %d entries\n", n)
	return sc.Err()
}

const helpText = `commands:
  set <key> <value>   insert, first write wins
  get <key>            fetch a value
  del <key>            remove a key
  range <lo> <hi>      print entries in [lo, hi)
  len                  entry count
  clear                empty the tree
  graph <path>         write a Graphviz dot file of the tree
  load <path>          bulk-insert "key value" lines from a file
  \history             print command history
  \q | quit | exit     quit
`

func main() {
	var (
		configPath = flag.String("config", "", "bptreectl.yaml path")
		oneShot    = flag.String("c", "", "run one command and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bptreectl: %v\n", err)
		os.Exit(1)
	}
	s := newStore(cfg)

	if strings.TrimSpace(*oneShot) != "" {
		var out strings.Builder
		if err := s.exec(*oneShot, &out); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(out.String())
		return
	}

	h := newHistory(cfg.History.Path)
	_ = h.load(cfg.History.Max)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bptree> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Println("bptreectl: type \\help for help")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "\\q", "quit", "exit":
			return
		case "\\help":
			fmt.Print(helpText)
			continue
		case "\\history":
			for i, l := range h.lines {
				fmt.Printf("%5d  %s\n", i+1, l)
			}
			continue
		}

		_ = h.append(line)
		_ = rl.SaveHistory(line)

		var out strings.Builder
		if err := s.exec(line, &out); err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Print(out.String())
	}
}
