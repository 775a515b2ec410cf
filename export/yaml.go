package export

import (
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/resagg/engine"
)

// WriteYAML writes table as an ordered mapping of label to a flow sequence
// of values. Blank cells are written as null.
func WriteYAML(w io.Writer, table *engine.AggregatedTable) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	if table != nil {
		for _, label := range table.Labels() {
			s, _ := table.Column(label)
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: label},
				seriesNode(s))
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func seriesNode(s engine.Series) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
			continue
		}
		seq.Content = append(seq.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(v, 'g', -1, 64),
		})
	}
	return seq
}
