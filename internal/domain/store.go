package domain

// StoreEndpoint is one registered store database. The address is serialized
// as "ip" to stay compatible with existing servers.json files.
type StoreEndpoint struct {
	Alias   string `json:"alias"`
	Address string `json:"ip"`
}

// ServerStatus is a registry entry decorated with its reachability, when checked.
type ServerStatus struct {
	StoreEndpoint
	Online *bool `json:"online,omitempty"`
}
