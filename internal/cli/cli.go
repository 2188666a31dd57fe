// Package cli holds the flag-set plumbing shared by every ioisis
// subcommand: the common flags (encodings, mode, tag-format template,
// subfield options, MST dialect selection, active-record filtering) and
// how they resolve into the internal/subfield, internal/mst, and
// internal/recconv configuration types the codecs actually take.
//
// Grounded on holo-build/main.go's own flag handling: each subcommand
// there builds its own small flag set and the root dispatcher picks the
// subcommand by name before parsing its arguments; here every ioisis
// subcommand shares one Options/FlagSet pair instead, since (unlike
// holo-build's per-generator flags) every ioisis conversion needs the
// same options, just applied to different formats.
package cli

import (
	"os"

	"github.com/ogier/pflag"

	"github.com/scieloorg/ioisis-go/internal/dialect"
	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/mst"
	"github.com/scieloorg/ioisis-go/internal/subfield"
)

// Options holds every common flag's parsed value.
type Options struct {
	IEnc, MEnc, JEnc, CEnc string
	Mode, CMode            string
	FTF                    string

	SubfieldPrefix string
	SubfieldLength int
	SubfieldLower  bool
	SubfieldFirst  string
	SubfieldEmpty  bool
	SubfieldNumber bool
	SubfieldZero   bool
	SubfieldCheck  bool

	Dialect     string
	DialectFile string
	ListDialect bool

	OnlyActive    bool
	All           bool
	PrependMFN    bool
	PrependStatus bool
	UTF8          bool
	Xylose        bool
}

// NewFlagSet builds a pflag.FlagSet for subcommand name with every common
// flag bound into o at its documented default.
func NewFlagSet(name string) (*pflag.FlagSet, *Options) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	o := &Options{}

	fs.StringVar(&o.IEnc, "ienc", "cp1252", "ISO 2709 payload encoding")
	fs.StringVar(&o.MEnc, "menc", "cp1252", "MST payload encoding")
	fs.StringVar(&o.JEnc, "jenc", "utf-8", "JSON Lines file encoding")
	fs.StringVar(&o.CEnc, "cenc", "utf-8", "CSV file encoding")
	fs.StringVar(&o.Mode, "mode", "field", "structured record mode: field|pairs|nest|inest|tidy|stidy")
	fs.StringVar(&o.CMode, "cmode", "tidy", "CSV row mode: tidy|stidy")
	fs.StringVar(&o.FTF, "ftf", "%z", "field-tag format template")

	fs.StringVar(&o.SubfieldPrefix, "prefix", "^", "subfield marker prefix")
	fs.IntVar(&o.SubfieldLength, "length", 1, "subfield key length")
	fs.BoolVar(&o.SubfieldLower, "lower", false, "lowercase subfield keys")
	fs.StringVar(&o.SubfieldFirst, "first", "", "key assigned to the unmarked leading run")
	fs.BoolVar(&o.SubfieldEmpty, "empty", false, "keep empty-value subfields")
	fs.BoolVar(&o.SubfieldNumber, "number", true, "disambiguate repeated keys by appending an occurrence number")
	fs.BoolVar(&o.SubfieldZero, "zero", false, "zero-pad the appended occurrence number")
	fs.BoolVar(&o.SubfieldCheck, "check", false, "verify unparse(parse(field)) == field")

	fs.StringVar(&o.Dialect, "dialect", "isis", "named MST dialect preset")
	fs.StringVar(&o.DialectFile, "dialect-file", "", "TOML file of additional MST dialect presets")
	fs.BoolVar(&o.ListDialect, "list-dialects", false, "print the available MST dialect presets and exit")

	fs.BoolVar(&o.OnlyActive, "only-active", false, "skip logically deleted MST records")
	fs.BoolVar(&o.All, "all", true, "include every record regardless of status")
	fs.BoolVar(&o.PrependMFN, "prepend-mfn", false, "include the mfn in every structured record")
	fs.BoolVar(&o.PrependStatus, "prepend-status", false, "include the active flag in every structured record")
	fs.BoolVar(&o.UTF8, "utf8", false, "enable the hybrid UTF-8/legacy decoder")
	fs.BoolVar(&o.Xylose, "xylose", false, "alias for --mode=inest --ftf=v%z")

	return fs, o
}

// ApplyXylose applies the --xylose convenience alias, overriding --mode
// and --ftf to their xylose-compatible values.
func (o *Options) ApplyXylose() {
	if o.Xylose {
		o.Mode = "inest"
		o.FTF = "v%z"
	}
}

// SubfieldConfig builds the subfield.Config implied by the subfield
// flags.
func (o *Options) SubfieldConfig() (subfield.Config, error) {
	return subfield.NewConfig(subfield.Config{
		Prefix: []byte(o.SubfieldPrefix),
		Length: o.SubfieldLength,
		Lower:  o.SubfieldLower,
		First:  []byte(o.SubfieldFirst),
		Empty:  o.SubfieldEmpty,
		Number: o.SubfieldNumber,
		Zero:   o.SubfieldZero,
		Check:  o.SubfieldCheck,
	})
}

// ResolveMSTOptions merges the bundled dialect presets with any
// --dialect-file presets, looks up --dialect, and converts the result
// into mst.Options.
func (o *Options) ResolveMSTOptions() (mst.Options, error) {
	presets := dialect.Builtin()
	if o.DialectFile != "" {
		data, err := readFile(o.DialectFile)
		if err != nil {
			return mst.Options{}, err
		}
		extra, err := dialect.Load(data)
		if err != nil {
			return mst.Options{}, err
		}
		for name, p := range extra {
			presets[name] = p
		}
	}
	preset, err := dialect.Lookup(presets, o.Dialect)
	if err != nil {
		return mst.Options{}, err
	}
	return preset.ToMSTOptions()
}

// ListDialects returns the merged preset table for --list-dialects.
func (o *Options) ListDialects() (map[string]dialect.Preset, error) {
	presets := dialect.Builtin()
	if o.DialectFile == "" {
		return presets, nil
	}
	data, err := readFile(o.DialectFile)
	if err != nil {
		return nil, err
	}
	extra, err := dialect.Load(data)
	if err != nil {
		return nil, err
	}
	for name, p := range extra {
		presets[name] = p
	}
	return presets, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewConfigurationError("cli: cannot read dialect file %q: %s", path, err.Error())
	}
	return data, nil
}
