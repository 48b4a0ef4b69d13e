package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-ml/lumen/internal/caffe2"
	"github.com/lumen-ml/lumen/internal/onnx"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <model>",
		Short: "Show model metadata without lowering it",
		Long: `Inspect prints a model's metadata: producer, operator set,
node count, weights, and declared inputs and outputs. The model is
parsed but not lowered, so unsupported operators do not fail.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Format == "caffe2" {
				return inspectCaffe2(cmd, args[0])
			}
			return inspectONNX(cmd, args[0])
		},
	}
	return cmd
}

func inspectONNX(cmd *cobra.Command, path string) error {
	model, err := onnx.ParseFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "format:    onnx (ir %d, opset %d)\n", model.IRVersion, model.OpsetVersion())
	if model.ProducerName != "" {
		fmt.Fprintf(out, "producer:  %s %s\n", model.ProducerName, model.ProducerVersion)
	}
	if model.Graph == nil {
		fmt.Fprintln(out, "graph:     none")
		return nil
	}

	fmt.Fprintf(out, "graph:     %s\n", model.Graph.Name)
	fmt.Fprintf(out, "nodes:     %d\n", len(model.Graph.Nodes))
	fmt.Fprintf(out, "weights:   %d\n", len(model.Graph.Initializers))

	weights := make(map[string]bool, len(model.Graph.Initializers))
	for i := range model.Graph.Initializers {
		weights[model.Graph.Initializers[i].Name] = true
	}
	fmt.Fprintln(out, "inputs:")
	for _, vi := range model.Graph.Inputs {
		if weights[vi.Name] {
			continue
		}
		fmt.Fprintf(out, "  %s %v\n", vi.Name, vi.Dims)
	}
	fmt.Fprintln(out, "outputs:")
	for _, vi := range model.Graph.Outputs {
		fmt.Fprintf(out, "  %s %v\n", vi.Name, vi.Dims)
	}
	return nil
}

func inspectCaffe2(cmd *cobra.Command, path string) error {
	net, err := caffe2.ParseNetFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "format:    caffe2\n")
	fmt.Fprintf(out, "net:       %s\n", net.Name)
	fmt.Fprintf(out, "ops:       %d\n", len(net.Ops))
	fmt.Fprintln(out, "inputs:")
	for _, name := range net.ExternalInputs {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out, "outputs:")
	for _, name := range net.ExternalOutputs {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}
