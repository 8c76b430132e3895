package models

// NetworkInfo identifies a spawned network and its member nodes.
type NetworkInfo struct {
	ID      string   `json:"id"`
	Size    int      `json:"size"`
	NodeIDs []string `json:"node_ids"`
}
