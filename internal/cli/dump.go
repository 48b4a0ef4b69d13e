package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-ml/lumen/internal/caffe2"
	"github.com/lumen-ml/lumen/internal/graph"
	"github.com/lumen-ml/lumen/internal/onnx"
	"github.com/lumen-ml/lumen/internal/store"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	ManifestPath string
	InitNetPath  string
	WeightsPath  string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <model>",
		Short: "Lower a model and print the resulting graph",
		Long: `Dump lowers a model into the internal dataflow graph and prints
its textual listing. Inputs with symbolic dimensions need a shape
manifest (--inputs). Caffe2 models additionally take the init net
holding the weights (--init). A safetensors checkpoint (--weights)
supplies or overrides weights for either format.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ManifestPath, "inputs", "", "yaml manifest of input shapes")
	cmd.Flags().StringVar(&opts.InitNetPath, "init", "", "caffe2 init net with the weights")
	cmd.Flags().StringVar(&opts.WeightsPath, "weights", "", "safetensors checkpoint overriding model weights")

	return cmd
}

func runDump(rootOpts *RootOptions, opts *DumpOptions, cmd *cobra.Command, path string) error {
	shapes := map[string]tensor.Shape{}
	if opts.ManifestPath != "" {
		var err error
		if shapes, err = LoadManifest(opts.ManifestPath); err != nil {
			return err
		}
	}

	var extra *store.MemStore
	if opts.WeightsPath != "" {
		var err error
		if extra, err = store.OpenSafetensors(opts.WeightsPath); err != nil {
			return err
		}
	}

	var (
		g       *graph.Graph
		inputs  []string
		outputs []string
		err     error
	)
	switch rootOpts.Format {
	case "caffe2":
		var m *caffe2.Model
		m, err = caffe2.Load(path, opts.InitNetPath, caffe2.Options{InputShapes: shapes, ExtraWeights: extra})
		if err == nil {
			g, inputs, outputs = m.Graph, m.Inputs, m.Outputs
		}
	default:
		var m *onnx.Model
		m, err = onnx.Load(path, onnx.Options{InputShapes: shapes, ExtraWeights: extra})
		if err == nil {
			g, inputs, outputs = m.Graph, m.Inputs, m.Outputs
		}
	}
	if err != nil {
		return err
	}

	if rootOpts.Verbose {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "lowered %d nodes\n", g.NodeCount())
		fmt.Fprintf(errOut, "inputs:  %v\n", inputs)
		fmt.Fprintf(errOut, "outputs: %v\n", outputs)
	}

	fmt.Fprint(cmd.OutOrStdout(), g.Dump())
	return nil
}
