package behavior

import (
	"github.com/metrico/tracebehavior/reader/model"
)

// BuildProcessTree collects one node per pid out of the process creation
// spans. A later span for the same pid replaces the earlier node but keeps
// its position. Parent links are only carried in ParentPID.
func BuildProcessTree(spans []model.Span) []model.ProcessNode {
	index := make(map[string]int)
	res := make([]model.ProcessNode, 0)
	for _, span := range spans {
		tags := NormalizeTags(span.Tags)
		if eventKind(tags) != model.EventKindProcessStart {
			continue
		}
		alert, hasAlert := tags[model.TagSigmaAlert]
		node := model.ProcessNode{
			PID:         tagString(tags, model.TagPID),
			ParentPID:   tagString(tags, model.TagPPID),
			Image:       tagString(tags, model.TagImage),
			CommandLine: tagString(tags, model.TagCommandLine),
			StartTime:   span.StartTime,
			HasAlert:    hasAlert,
			Children:    []*model.ProcessNode{},
		}
		if hasAlert {
			node.Alert = alert.String()
		}
		if i, ok := index[node.PID]; ok {
			res[i] = node
			continue
		}
		index[node.PID] = len(res)
		res = append(res, node)
	}
	return res
}

// FlatProcessList returns the nodes as pointers without linking children.
func FlatProcessList(nodes []model.ProcessNode) []*model.ProcessNode {
	res := make([]*model.ProcessNode, len(nodes))
	for i := range nodes {
		n := nodes[i]
		res[i] = &n
	}
	return res
}

// LinkProcessTree links nodes to their parents through ParentPID and returns
// the roots: nodes whose parent is absent from the list. Self parented nodes
// are treated as roots. The input nodes are copied, not modified.
func LinkProcessTree(nodes []model.ProcessNode) []*model.ProcessNode {
	byPID := make(map[string]*model.ProcessNode, len(nodes))
	ordered := make([]*model.ProcessNode, 0, len(nodes))
	for i := range nodes {
		n := nodes[i]
		n.Children = []*model.ProcessNode{}
		byPID[n.PID] = &n
		ordered = append(ordered, &n)
	}
	roots := make([]*model.ProcessNode, 0)
	for _, n := range ordered {
		parent, ok := byPID[n.ParentPID]
		if !ok || parent == n || createsCycle(byPID, n) {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}

// createsCycle reports whether following ParentPID from n leads back to n.
func createsCycle(byPID map[string]*model.ProcessNode, n *model.ProcessNode) bool {
	seen := map[string]bool{n.PID: true}
	cur := n
	for {
		parent, ok := byPID[cur.ParentPID]
		if !ok {
			return false
		}
		if seen[parent.PID] {
			return parent == n
		}
		seen[parent.PID] = true
		cur = parent
	}
}
