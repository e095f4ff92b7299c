package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

////////////////////////////////////////////////////////////
// Node
////////////////////////////////////////////////////////////

type Node struct {
	json  JSON
	dn    string
	id    string
	name  string
	podID string
	role  string
}

func NewNode(json JSON) Node {
	return Node{
		json:  json,
		dn:    json.Get("dn").Str,
		id:    json.Get("id").Str,
		name:  json.Get("name").Str,
		podID: podFromDN(json.Get("dn").Str),
		role:  json.Get("role").Str,
	}
}

func (n Node) MarshalJSON() ([]byte, error) {
	return []byte(n.json.Raw), nil
}

var errNodeNotFound = errors.New("node not found")

// getNode looks up a registered leaf or spine by node ID.
func (c *Client) getNode(id string) (Node, error) {
	res, err := c.get(Query{
		uri: "/api/node/class/fabricNode",
		query: []string{fmt.Sprintf(
			`query-target-filter=and(ne(fabricNode.role,"controller"),eq(fabricNode.id,"%s"))`, id)},
	})
	if err != nil {
		return Node{}, err
	}
	records := res.Get("#.fabricNode.attributes").Array()
	if len(records) == 0 {
		return Node{}, errors.Wrapf(errNodeNotFound, "id=%s", id)
	}
	return NewNode(records[0]), nil
}

// nodePods resolves the pod of every node in the migration. Source nodes
// must exist. Destination nodes may not be registered yet, in which case
// they inherit the pod of the matching source node.
func (c *Client) nodePods(m Migration) (map[string]string, error) {
	pods := make(map[string]string)
	for _, id := range m.Source {
		node, err := c.getNode(id)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"id":   id,
			"name": node.name,
			"role": node.role,
		}).Info("Found source node")
		pods[id] = node.podID
	}
	for i, id := range m.Dest {
		node, err := c.getNode(id)
		switch {
		case errors.Is(err, errNodeNotFound):
			pod := pods[m.Source[i]]
			if pod == "" {
				pod = c.opts.PodID
			}
			log.WithFields(logrus.Fields{
				"id":  id,
				"pod": pod,
			}).Warn("Destination node not registered, using source pod")
			pods[id] = pod
		case err != nil:
			return nil, err
		case node.podID == "":
			pods[id] = c.opts.PodID
		default:
			pods[id] = node.podID
		}
	}
	return pods, nil
}
