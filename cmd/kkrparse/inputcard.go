package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kkrtools/kkr"
	"github.com/kkrtools/kkr/inputcard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ErrInconsistent = errors.New("structure and parameters are inconsistent")

var (
	paramsFile    string
	structureFile string
	outFile       string
	parentFile    string
	shapes        []int
)

var inputcardCmd = &cobra.Command{
	Use:   "inputcard",
	Short: "Write the inputcard for a structure",
	RunE:  runInputcard,
}

var check2DCmd = &cobra.Command{
	Use:   "check2d",
	Short: "Check that the parameters match the periodicity of a structure",
	RunE:  runCheck2D,
}

func init() {
	for _, cmd := range []*cobra.Command{inputcardCmd, check2DCmd} {
		cmd.Flags().StringVarP(&paramsFile, "params", "p", "",
			"TOML file with KKR keyword values")
		cmd.Flags().StringVarP(&structureFile, "structure", "s", "",
			"YAML file with the structure")
		cmd.MarkFlagRequired("params")
		cmd.MarkFlagRequired("structure")
	}
	inputcardCmd.Flags().StringVarP(&outFile, "output", "o", "",
		"write the inputcard here instead of stdout")
	inputcardCmd.Flags().StringVar(&parentFile, "parent", "",
		"JSON record of a previous run to take EMIN from")
	inputcardCmd.Flags().IntSliceVar(&shapes, "shapes", nil,
		"shape function index per atom type")
}

func loadInputs() (*inputcard.Params, *inputcard.Structure, error) {
	params, err := inputcard.LoadParams(paramsFile)
	if err != nil {
		return nil, nil, err
	}
	s, err := inputcard.LoadStructure(structureFile)
	if err != nil {
		return nil, nil, err
	}
	return params, s, nil
}

func loadRecord(filename string) (*kkr.Record, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("loadRecord: %w", err)
	}
	rec := kkr.NewRecord()
	if err := rec.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("loadRecord %s: %w", filename, err)
	}
	return rec, nil
}

func runInputcard(cmd *cobra.Command, args []string) error {
	params, s, err := loadInputs()
	if err != nil {
		return err
	}
	if ok, msg := inputcard.Check2D(s, params); !ok {
		return fmt.Errorf("%w: %s", ErrInconsistent, msg)
	}
	opts := inputcard.Options{Shapes: shapes}
	if parentFile != "" {
		opts.Parent, err = loadRecord(parentFile)
		if err != nil {
			return err
		}
	}
	var (
		natyp, nspin int
		newsosol     bool
	)
	if outFile == "" {
		natyp, nspin, newsosol, err = inputcard.Generate(params, s, cmd.OutOrStdout(), opts)
		if err != nil {
			return err
		}
	} else {
		natyp, nspin, newsosol, err = writeInputcard(outFile, params, s, opts)
		if err != nil {
			return err
		}
	}
	logger.Info("wrote inputcard",
		zap.String("output", outFile),
		zap.Int("natyp", natyp),
		zap.Int("nspin", nspin),
		zap.Bool("newsosol", newsosol),
	)
	return nil
}

// writeInputcard generates the inputcard into filename, reporting a
// failed close as well as a failed write
func writeInputcard(filename string, params *inputcard.Params,
	s *inputcard.Structure, opts inputcard.Options) (natyp, nspin int, newsosol bool, err error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, 0, false, err
	}
	natyp, nspin, newsosol, err = inputcard.Generate(params, s, f, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %w", filename, cerr)
	}
	return natyp, nspin, newsosol, err
}

func runCheck2D(cmd *cobra.Command, args []string) error {
	params, s, err := loadInputs()
	if err != nil {
		return err
	}
	ok, msg := inputcard.Check2D(s, params)
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	if !ok {
		return ErrInconsistent
	}
	return nil
}
