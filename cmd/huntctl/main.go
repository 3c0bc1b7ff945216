package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/k3dep/hunterd/pkg/client"
)

var (
	server = flag.String("server", "http://127.0.0.1:8080", "hunterd base URL")
	model  = flag.String("model", "", "Radio model (for enable)")
	port   = flag.String("port", "", "Serial port (for enable)")
	baud   = flag.Int("baud", 0, "Baud rate, 0 = auto-detect (for enable)")
	mode   = flag.String("mode", "", "Mode, generic or native (for tune)")
	limit  = flag.Int("limit", 20, "Number of rows (for history)")
)

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		showHelp()
		os.Exit(1)
	}

	c := client.New(*server)

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "status":
		err = printStatus(c)
	case "radios":
		err = printList(c.Radios)
	case "ports":
		err = printList(c.Ports)
	case "enable":
		err = runEnable(c)
	case "disable":
		_, err = c.Disable()
		if err == nil {
			fmt.Println("disabled")
		}
	case "tune":
		err = runTune(c)
	case "history":
		err = printHistory(c)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printStatus(c *client.Client) error {
	status, err := c.Status()
	if err != nil {
		return err
	}

	fmt.Printf("State:     %s\n", status.State)
	if status.Model != "" {
		fmt.Printf("Radio:     %s on %s @ %d baud\n", status.Model, status.Port, status.Baud)
	}
	if status.Frequency > 0 {
		fmt.Printf("Frequency: %.6f MHz\n", status.FreqMHz)
	}
	if status.Mode != "" {
		fmt.Printf("Mode:      %s\n", status.Mode)
	}
	fmt.Printf("Station:   %s (%s)\n", status.Callsign, status.Grid)
	fmt.Printf("Uptime:    %s\n", status.Uptime)
	return nil
}

func printList(fetch func() ([]string, error)) error {
	items, err := fetch()
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Println(item)
	}
	return nil
}

func runEnable(c *client.Client) error {
	if *model == "" || *port == "" {
		return fmt.Errorf("enable requires -model and -port")
	}
	status, err := c.Enable(*model, *port, *baud)
	if err != nil {
		return err
	}
	fmt.Printf("connected: %s on %s @ %d baud, %.6f MHz\n",
		status.Model, status.Port, status.Baud, status.FreqMHz)
	return nil
}

func runTune(c *client.Client) error {
	if flag.NArg() < 2 {
		return fmt.Errorf("tune requires a frequency in Hz")
	}
	freq, err := strconv.ParseInt(flag.Arg(1), 10, 64)
	if err != nil {
		return fmt.Errorf("bad frequency %q: %w", flag.Arg(1), err)
	}

	status, err := c.Tune(freq, *mode)
	if err != nil {
		return err
	}
	fmt.Printf("tuned: %.6f MHz %s\n", status.FreqMHz, status.Mode)
	return nil
}

func printHistory(c *client.Client) error {
	entries, err := c.History(*limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-16s %12d Hz  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Model, e.Frequency, e.Mode)
	}
	return nil
}

func showHelp() {
	fmt.Println("huntctl - hunterd control tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options] <command>\n", os.Args[0])
	fmt.Println()
	fmt.Println("Commands (options come before the command):")
	fmt.Println("  status                         Show daemon status")
	fmt.Println("  radios                         List supported radio models")
	fmt.Println("  ports                          List serial ports")
	fmt.Println("  enable                         Connect to a radio (-model, -port, -baud 0 = auto)")
	fmt.Println("  disable                        Disconnect")
	fmt.Println("  tune <hz>                      Set frequency and mode (-mode)")
	fmt.Println("  history                        Show recent tunes (-limit)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s -model 'Yaesu FT-DX10' -port /dev/ttyUSB0 enable\n", os.Args[0])
	fmt.Printf("  %s -mode FT8 tune 14074000\n", os.Args[0])
}
