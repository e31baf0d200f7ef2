package semver

import "gopkg.in/yaml.v3"

// UnmarshalYAML implements yaml.Unmarshaler for BumpKind.
// Config values are strict: an unrecognized kind is an error.
func (k *BumpKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, _, err := ParseBumpKind(s, PolicyReject)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for UnknownKindPolicy.
func (p *UnknownKindPolicy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseUnknownKindPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for BumpKind.
func (k BumpKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// MarshalYAML implements yaml.Marshaler for UnknownKindPolicy.
func (p UnknownKindPolicy) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// MarshalText renders the kind by name in JSON output.
func (k BumpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MarshalText renders the policy by name in JSON output.
func (p UnknownKindPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
