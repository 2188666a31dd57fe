package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/scieloorg/ioisis-go/internal/cli"
	"github.com/scieloorg/ioisis-go/internal/hybridenc"
	"github.com/scieloorg/ioisis-go/internal/iso"
	"github.com/scieloorg/ioisis-go/internal/mst"
	"github.com/scieloorg/ioisis-go/internal/recconv"
	"github.com/scieloorg/ioisis-go/internal/recio"
	"github.com/scieloorg/ioisis-go/internal/subfield"
	"github.com/scieloorg/ioisis-go/internal/tagfmt"
)

// conversion names an (input format, output format) pair; every
// subcommand and its acronym alias resolve to one of these.
type conversion struct{ in, out string }

var conversions = map[string]conversion{
	"iso2jsonl": {"iso", "jsonl"}, "i2j": {"iso", "jsonl"},
	"jsonl2iso": {"jsonl", "iso"}, "j2i": {"jsonl", "iso"},
	"mst2jsonl": {"mst", "jsonl"}, "m2j": {"mst", "jsonl"},
	"jsonl2mst": {"jsonl", "mst"}, "j2m": {"jsonl", "mst"},
	"iso2csv": {"iso", "csv"}, "i2c": {"iso", "csv"},
	"csv2iso": {"csv", "iso"}, "c2i": {"csv", "iso"},
	"mst2csv": {"mst", "csv"}, "m2c": {"mst", "csv"},
	"csv2mst": {"csv", "mst"}, "c2m": {"csv", "mst"},
	"jsonl2csv": {"jsonl", "csv"}, "j2c": {"jsonl", "csv"},
	"csv2jsonl": {"csv", "jsonl"}, "c2j": {"csv", "jsonl"},
}

func main() {
	name, args := dispatchName()
	conv, ok := conversions[name]
	if !ok {
		showError(fmt.Errorf("unknown subcommand %q; run with --help for the list", name))
		os.Exit(1)
	}

	fs, o := cli.NewFlagSet(name)
	fs.Usage = func() { printHelp(name) }
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	o.ApplyXylose()

	if o.ListDialect {
		listDialects(o)
		return
	}

	rest := fs.Args()
	inPath, outPath := "-", "-"
	if len(rest) > 0 {
		inPath = rest[0]
	}
	if len(rest) > 1 {
		outPath = rest[1]
	}

	if err := run(conv, o, inPath, outPath); err != nil {
		showError(err)
		os.Exit(2)
	}
}

// dispatchName resolves the subcommand name: a symlinked/renamed binary
// (e.g. "i2j") selects it via its own basename, matching holo-build's
// habit of a single binary behaving differently by argv[0]; otherwise
// the first argument is the subcommand name.
func dispatchName() (string, []string) {
	base := filepath.Base(os.Args[0])
	if _, ok := conversions[base]; ok {
		return base, os.Args[1:]
	}
	if len(os.Args) > 1 {
		return os.Args[1], os.Args[2:]
	}
	return "", nil
}

func run(conv conversion, o *cli.Options, inPath, outPath string) error {
	sp, err := newSubfieldParser(o)
	if err != nil {
		return err
	}

	src, err := openSource(conv.in, o, sp, inPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := openSink(conv.out, o, sp, outPath)
	if err != nil {
		return err
	}

	if err := runPipeline(src, dst); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func newSubfieldParser(o *cli.Options) (*subfield.Parser, error) {
	cfg, err := o.SubfieldConfig()
	if err != nil {
		return nil, err
	}
	return subfield.New(cfg), nil
}

func legacyCodec(o *cli.Options, encName string) (recconv.Codec, error) {
	if o.UTF8 {
		return recconv.UTF8Codec(), nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		return recconv.Codec{}, err
	}
	return recconv.HybridCodec(hybridenc.NewDecoder(enc)), nil
}

func fieldTagTemplate(mode tagfmt.Mode, customLen int, ftf string) (*tagfmt.Template, error) {
	return tagfmt.Compile(mode, customLen, ftf)
}

func openSource(format string, o *cli.Options, sp *subfield.Parser, path string) (recordSource, error) {
	switch format {
	case "iso":
		if o.OnlyActive || o.PrependStatus {
			warn("--only-active/--prepend-status have no effect on ISO 2709 input, which carries no status byte")
		}
		codec, err := legacyCodec(o, o.IEnc)
		if err != nil {
			return nil, err
		}
		ftf, err := fieldTagTemplate(tagfmt.StringMode, iso.TagLen, o.FTF)
		if err != nil {
			return nil, err
		}
		rc, err := recio.OpenTextInput(path)
		if err != nil {
			return nil, err
		}
		return newISOSource(rc, iso.DefaultOptions(), ftf, codec, o.PrependMFN)
	case "mst":
		codec, err := legacyCodec(o, o.MEnc)
		if err != nil {
			return nil, err
		}
		ftf, err := fieldTagTemplate(tagfmt.IntMode, 0, o.FTF)
		if err != nil {
			return nil, err
		}
		mopts, err := o.ResolveMSTOptions()
		if err != nil {
			return nil, err
		}
		rc, err := recio.OpenMSTInput(path)
		if err != nil {
			return nil, err
		}
		return newMSTSource(rc, mopts, ftf, codec, o.OnlyActive)
	case "jsonl":
		rc, err := recio.OpenTextInput(path)
		if err != nil {
			return nil, err
		}
		tr, err := transcodingReader(rc, o.JEnc)
		if err != nil {
			rc.Close()
			return nil, err
		}
		return newJSONLSource(readCloser{tr, rc}, o.Mode, sp), nil
	case "csv":
		rc, err := recio.OpenTextInput(path)
		if err != nil {
			return nil, err
		}
		tr, err := transcodingReader(rc, o.CEnc)
		if err != nil {
			rc.Close()
			return nil, err
		}
		return newCSVSource(readCloser{tr, rc}, o.CMode, sp)
	default:
		return nil, fmt.Errorf("ioisis: unknown input format %q", format)
	}
}

func openSink(format string, o *cli.Options, sp *subfield.Parser, path string) (recordSink, error) {
	switch format {
	case "iso":
		codec, err := legacyCodec(o, o.IEnc)
		if err != nil {
			return nil, err
		}
		ftf, err := fieldTagTemplate(tagfmt.StringMode, iso.TagLen, o.FTF)
		if err != nil {
			return nil, err
		}
		wc, err := recio.OpenTextOutput(path)
		if err != nil {
			return nil, err
		}
		return newISOSink(wc, iso.DefaultOptions(), ftf, codec)
	case "mst":
		codec, err := legacyCodec(o, o.MEnc)
		if err != nil {
			return nil, err
		}
		ftf, err := fieldTagTemplate(tagfmt.IntMode, 0, o.FTF)
		if err != nil {
			return nil, err
		}
		mopts, err := o.ResolveMSTOptions()
		if err != nil {
			return nil, err
		}
		f, err := recio.CreateMSTOutput(path)
		if err != nil {
			return nil, err
		}
		return newMSTSink(f, mopts, ftf, codec, mst.DefaultShift)
	case "jsonl":
		wc, err := recio.OpenTextOutput(path)
		if err != nil {
			return nil, err
		}
		tw, err := transcodingWriter(wc, o.JEnc)
		if err != nil {
			wc.Close()
			return nil, err
		}
		return newJSONLSink(writeCloser{tw, wc}, o.Mode, sp), nil
	case "csv":
		wc, err := recio.OpenTextOutput(path)
		if err != nil {
			return nil, err
		}
		tw, err := transcodingWriter(wc, o.CEnc)
		if err != nil {
			wc.Close()
			return nil, err
		}
		return newCSVSink(writeCloser{tw, wc}, o.CMode, sp), nil
	default:
		return nil, fmt.Errorf("ioisis: unknown output format %q", format)
	}
}

func listDialects(o *cli.Options) {
	presets, err := o.ListDialects()
	if err != nil {
		showError(err)
		os.Exit(1)
	}
	for name := range presets {
		fmt.Println(name)
	}
}

func printHelp(name string) {
	fmt.Printf("Usage: %s [flags] [infile] [outfile]\n\n", name)
	fmt.Println("infile/outfile default to \"-\" (stdin/stdout).")
	fmt.Println("Flags:")
	fs, _ := cli.NewFlagSet(name)
	fs.PrintDefaults()
}

func showError(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[31m\x1b[1m!!\x1b[0m %s\n", err.Error())
}
