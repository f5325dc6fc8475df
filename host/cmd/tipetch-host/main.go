// tipetch-host is the bench-side console for the etching instrument. It
// forwards tuning commands over the USB serial link and can push whole
// presets from a YAML file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/shlex"

	"tipetch/host/preset"
	"tipetch/host/serial"
)

var (
	device      = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud        = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	presetsPath = flag.String("presets", "", "YAML preset file")
)

func main() {
	flag.Parse()

	var presets *preset.File
	if *presetsPath != "" {
		var err error
		presets, err = preset.Load(*presetsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to %s...\n", *device)
	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()
	fmt.Println("Connected. Type 'help' for commands, 'quit' to exit.")

	go printIncoming(port)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			return

		case "help", "?":
			printHelp()

		case "presets":
			if presets == nil {
				fmt.Println("No preset file loaded (use -presets)")
				continue
			}
			for _, name := range presets.Names() {
				fmt.Println(" ", name)
			}

		case "apply":
			if len(args) != 2 {
				fmt.Println("Usage: apply <preset>")
				continue
			}
			if err := applyPreset(port, presets, args[1]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			// Everything else goes to the instrument verbatim.
			if err := sendLine(port, scanner.Text()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func applyPreset(port serial.Port, presets *preset.File, name string) error {
	if presets == nil {
		return fmt.Errorf("no preset file loaded (use -presets)")
	}
	p, ok := presets.Find(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}

	for _, cmd := range p.Commands() {
		if err := sendLine(port, cmd); err != nil {
			return err
		}
		// Give the firmware a moment to process each line.
		time.Sleep(20 * time.Millisecond)
	}
	fmt.Printf("Applied preset %q (%d parameters)\n", name, len(p.Params))
	return nil
}

func sendLine(port serial.Port, line string) error {
	_, err := port.Write([]byte(line + "\n"))
	return err
}

// printIncoming copies instrument output to the terminal.
func printIncoming(port serial.Port) {
	r := bufio.NewReader(port)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			fmt.Print(line)
		}
		if err != nil {
			if err == io.EOF {
				// Read timeout; keep polling.
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return
		}
	}
}

func printHelp() {
	fmt.Println("\nLocal commands:")
	fmt.Println("  presets          - List presets from the loaded file")
	fmt.Println("  apply <preset>   - Send a preset's parameters to the instrument")
	fmt.Println("  quit/exit/q      - Exit")
	fmt.Println("\nInstrument commands (forwarded verbatim):")
	fmt.Println("  set <name> <value>")
	fmt.Println("  get <name>")
	fmt.Println("  list")
	fmt.Println("  status")
	fmt.Println()
}
