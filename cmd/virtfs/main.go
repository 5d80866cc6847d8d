// Command virtfs is an interactive shell for a filesystem stored in a
// single virtual-disk file. It parses command lines and formats
// output; all storage logic lives in the virtfs package.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mit-pdos/go-journal/util"
	"github.com/rodaine/table"
	"github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"

	"github.com/virtfs/virtfs"
)

func isatty(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	return err == nil
}

var interactive = isatty(os.Stdin)

func prompt(in *bufio.Scanner, msg string) (string, bool) {
	if interactive {
		fmt.Print(msg)
	}
	for in.Scan() {
		line := in.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		return strings.TrimSpace(line), true
	}
	return "", false
}

// openOrCreate opens the disk image, offering to format a fresh one if
// the file does not exist.
func openOrCreate(in *bufio.Scanner, path string) (disk.Disk, error) {
	st, err := os.Stat(path)
	if err == nil {
		d, err := disk.NewFileDisk(path, uint64(st.Size())/disk.BlockSize)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	answer, ok := prompt(in, fmt.Sprintf(
		"Virtual disk file '%s' not found. Create it? (y/n): ", path))
	if !ok || (answer != "y" && answer != "Y") {
		return nil, fmt.Errorf("no virtual disk")
	}
	sizeStr, ok := prompt(in, "Enter size in bytes (e.g., 10485760 for 10MB): ")
	if !ok {
		return nil, fmt.Errorf("no size provided")
	}
	size, err := strconv.ParseUint(sizeStr, 10, 64)
	if err != nil || size == 0 {
		return nil, fmt.Errorf("invalid size provided")
	}

	d, err := disk.NewFileDisk(path, size/disk.BlockSize)
	if err != nil {
		return nil, err
	}
	if err := virtfs.Format(d, size); err != nil {
		return nil, err
	}
	if interactive {
		fmt.Printf("Virtual disk created successfully: %s (%d bytes)\n", path, size)
	}
	return d, nil
}

func doLs(v *virtfs.Vfs, p string) {
	ents, err := v.List(p)
	if err != nil {
		fmt.Printf("ls: cannot access '%s': %v\n", p, err)
		return
	}
	tbl := table.New("Type", "Size", "Name")
	for _, e := range ents {
		kind := "f"
		if e.IsDir {
			kind = "d"
		}
		tbl.AddRow(kind, e.Size, e.Name)
	}
	tbl.Print()
}

func doDf(v *virtfs.Vfs) {
	u := v.Usage()
	tbl := table.New("", "Used", "Free", "Total")
	tbl.AddRow("Inodes", u.InodesUsed, u.InodesFree, u.InodesTotal)
	tbl.AddRow("Data Blocks", u.BlocksUsed, u.BlocksFree, u.BlocksTotal)
	tbl.AddRow("Bytes", u.BytesUsed, u.BytesFree, u.BytesTotal)
	tbl.Print()
}

func doCpTo(v *virtfs.Vfs, hostPath, vdiskPath string) {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		fmt.Printf("Error: cannot open host file %s\n", hostPath)
		return
	}
	if err := v.CreateFile(vdiskPath, data); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Copied %s to %s\n", hostPath, vdiskPath)
}

func doCpFrom(v *virtfs.Vfs, vdiskPath, hostPath string) {
	data, err := v.ReadFile(vdiskPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := os.WriteFile(hostPath, data, 0644); err != nil {
		fmt.Printf("Error: cannot create host file %s\n", hostPath)
		return
	}
	fmt.Printf("Copied %s to %s\n", vdiskPath, hostPath)
}

func parseBytes(arg string) (uint64, bool) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint64(n), true
}

const helpText = `Available commands:
  ls [path]                - List directory contents (default: current dir)
  cd [path]                - Change current directory (.. is supported)
  pwd                      - Print current directory path
  mkdir <path>             - Create a directory
  rmdir <path>             - Remove an empty directory
  cp-to <host> <vdisk>     - Copy file from host to virtual disk
  cp-from <vdisk> <host>   - Copy file from virtual disk to host
  rm <path>                - Remove a file or link
  ln <target> <link_name>  - Create a hard link
  append <path> <bytes>    - Add N null bytes to a file
  truncate <path> <bytes>  - Shorten a file by N bytes (or to 0)
  df                       - Display disk usage information
  exit/quit                - Exit the program
`

func dispatch(v *virtfs.Vfs, cmd string, arg1 string, arg2 string) bool {
	switch cmd {
	case "exit", "quit":
		return false
	case "cd":
		if arg1 == "" {
			arg1 = "/"
		}
		if err := v.ChDir(arg1); err != nil {
			fmt.Printf("cd: %v: %s\n", err, arg1)
		}
	case "pwd":
		wd, err := v.WorkingDir()
		if err != nil {
			fmt.Printf("pwd: %v\n", err)
		} else {
			fmt.Println(wd)
		}
	case "ls":
		if arg1 == "" {
			arg1 = "."
		}
		doLs(v, arg1)
	case "mkdir":
		if arg1 == "" {
			fmt.Println("Usage: mkdir <path>")
			return true
		}
		if err := v.Mkdir(arg1); err != nil {
			fmt.Printf("Error: %v\n", err)
		} else {
			fmt.Printf("Directory created: %s\n", arg1)
		}
	case "rmdir":
		if arg1 == "" {
			fmt.Println("Usage: rmdir <path>")
			return true
		}
		if err := v.Rmdir(arg1); err != nil {
			fmt.Printf("Error: %v\n", err)
		} else {
			fmt.Printf("Removed directory %s\n", arg1)
		}
	case "cp-to":
		if arg1 == "" || arg2 == "" {
			fmt.Println("Usage: cp-to <host_path> <vdisk_path>")
			return true
		}
		doCpTo(v, arg1, arg2)
	case "cp-from":
		if arg1 == "" || arg2 == "" {
			fmt.Println("Usage: cp-from <vdisk_path> <host_path>")
			return true
		}
		doCpFrom(v, arg1, arg2)
	case "rm":
		if arg1 == "" {
			fmt.Println("Usage: rm <path>")
			return true
		}
		if err := v.Remove(arg1); err != nil {
			fmt.Printf("Error: %v\n", err)
		} else {
			fmt.Printf("Removed %s\n", arg1)
		}
	case "ln":
		if arg1 == "" || arg2 == "" {
			fmt.Println("Usage: ln <target_path> <link_path>")
			return true
		}
		if err := v.Link(arg1, arg2); err != nil {
			fmt.Printf("Error: %v\n", err)
		} else {
			fmt.Printf("Created hard link %s -> %s\n", arg2, arg1)
		}
	case "append":
		n, ok := parseBytes(arg2)
		if arg1 == "" || !ok {
			fmt.Println("Usage: append <path> <bytes>")
			return true
		}
		written, err := v.Append(arg1, n)
		if err != nil {
			fmt.Printf("Error: %v (appended %d bytes)\n", err, written)
		} else {
			fmt.Printf("Appended %d bytes to %s.\n", written, arg1)
		}
	case "truncate":
		n, ok := parseBytes(arg2)
		if arg1 == "" || !ok {
			fmt.Println("Usage: truncate <path> <bytes>")
			return true
		}
		sz, err := v.Truncate(arg1, n)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		} else {
			fmt.Printf("Shortened %s to %d bytes.\n", arg1, sz)
		}
	case "df":
		doDf(v)
	case "help":
		fmt.Print(helpText)
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
	return true
}

func main() {
	flag.Uint64Var(&util.Debug, "debug", 0, "debug level (higher is more verbose)")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s <virtual_disk_file>\n", os.Args[0])
		os.Exit(1)
	}

	in := bufio.NewScanner(os.Stdin)
	d, err := openOrCreate(in, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	v := virtfs.Mount(d)
	defer v.Close()
	if interactive {
		fmt.Println("Virtual File System Initialized. Type 'help' for commands.")
	}

	for {
		if interactive {
			fmt.Print("vfs> ")
		}
		if !in.Scan() {
			break
		}
		line := in.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var arg1, arg2 string
		if len(fields) > 1 {
			arg1 = fields[1]
		}
		if len(fields) > 2 {
			arg2 = fields[2]
		}
		if !dispatch(v, fields[0], arg1, arg2) {
			break
		}
	}
	if interactive {
		fmt.Println("Exiting.")
	}
}
