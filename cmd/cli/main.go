package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server address")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	base := strings.TrimRight(*addr, "/")

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	var (
		path string
		err  error
	)
	switch cmd {
	case "characters", "locations", "episodes":
		path, err = listPath(cmd, args)
	case "dimension", "location", "episode":
		path, err = namePath(cmd, args)
	case "character":
		path, err = characterPath(args)
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := get(client, base+path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cli [global options] <command> [options]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  characters|locations|episodes -page N")
	fmt.Fprintln(os.Stderr, "  dimension|location|episode -name X")
	fmt.Fprintln(os.Stderr, "  character -id N")
}

func listPath(cmd string, args []string) (string, error) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)
	return fmt.Sprintf("/api/%s?page=%d", cmd, *page), nil
}

func namePath(cmd string, args []string) (string, error) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	name := fs.String("name", "", "dimension, location name, or episode number/name")
	fs.Parse(args)
	if *name == "" {
		fs.Usage()
		return "", fmt.Errorf("%s: -name is required", cmd)
	}
	return fmt.Sprintf("/api/%s/%s", cmd, url.PathEscape(*name)), nil
}

func characterPath(args []string) (string, error) {
	fs := flag.NewFlagSet("character", flag.ExitOnError)
	id := fs.Int("id", 0, "character id")
	fs.Parse(args)
	if *id <= 0 {
		fs.Usage()
		return "", fmt.Errorf("character: -id must be positive")
	}
	return "/api/character/" + strconv.Itoa(*id), nil
}

func get(client *http.Client, u string) error {
	resp, err := client.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s", resp.Status)
	}
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}
