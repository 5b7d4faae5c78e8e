package runtime

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultAccountNames are tried in order when no account name is given.
var DefaultAccountNames = []string{"default", "default-ibm-cloud", "default-ibm-quantum-platform"}

type ProxyConfiguration struct {
	URLs         map[string]string `json:"urls,omitempty"`
	UsernameNTLM string            `json:"username_ntlm,omitempty"`
	PasswordNTLM string            `json:"password_ntlm,omitempty"`
}

// Account is one entry of the saved accounts file.
type Account struct {
	Channel         string              `json:"channel"`
	PrivateEndpoint bool                `json:"private_endpoint"`
	Token           string              `json:"token"`
	URL             string              `json:"url"`
	Instance        string              `json:"instance,omitempty"`
	Proxies         *ProxyConfiguration `json:"proxies,omitempty"`
	Verify          bool                `json:"verify"`
}

// DefaultAccountFile is $HOME/.qiskit/qiskit-ibm.json.
func DefaultAccountFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locate home directory")
	}
	return filepath.Join(home, ".qiskit", "qiskit-ibm.json"), nil
}

// LoadAccount reads the named account from filename. Empty arguments select
// the default file and the default account.
func LoadAccount(filename, name string) (*Account, error) {
	if filename == "" {
		var err error
		if filename, err = DefaultAccountFile(); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read account file")
	}
	accounts := map[string]*Account{}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, errors.Wrapf(err, "parse account file %s", filename)
	}
	if name != "" {
		acct, ok := accounts[name]
		if !ok || acct == nil {
			return nil, errors.Wrapf(ErrBadArgument, "account %q not found in %s", name, filename)
		}
		return acct, nil
	}
	for _, n := range DefaultAccountNames {
		if acct, ok := accounts[n]; ok && acct != nil {
			return acct, nil
		}
	}
	return nil, errors.Wrapf(ErrBadArgument, "no default account in %s", filename)
}
