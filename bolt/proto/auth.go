package proto

// Auth carries HELLO/LOGON credentials. Scheme is "basic" for
// username/password, or a custom scheme with Token populated.
type Auth struct {
	Scheme      string
	Principal   string // username, for scheme "basic"
	Credentials string // password, for scheme "basic"
	Token       map[string]string
}

// ToMap renders Auth as the wire-level auth map carried in HELLO/LOGON/INIT.
func (a Auth) ToMap() map[string]string {
	m := map[string]string{"scheme": a.Scheme}
	if a.Scheme == "basic" {
		m["principal"] = a.Principal
		m["credentials"] = a.Credentials
		return m
	}
	for k, v := range a.Token {
		m[k] = v
	}
	return m
}
