package access

// Permission keys overlaid on listed profiles.
const (
	PermDLRead    = "dl_read"
	PermDLWrite   = "dl_write"
	PermDictRead  = "dict_read"
	PermDictWrite = "dict_write"
)

// PermissionKeys lists the keys every overlay carries.
var PermissionKeys = []string{PermDLRead, PermDLWrite, PermDictRead, PermDictWrite}

// Global flags stored per user.
const (
	FlagSysAdmin = "sys_admin"
	FlagAccAdmin = "acc_admin"
)

// Overlay returns the four permission keys, taking stored values when they
// are true and falling back to def for absent or falsy entries.
func Overlay(stored map[string]any, def bool) map[string]bool {
	out := make(map[string]bool, len(PermissionKeys))
	for _, k := range PermissionKeys {
		out[k] = def
		if v, ok := stored[k].(bool); ok && v {
			out[k] = true
		}
	}
	for k, v := range stored {
		if _, known := out[k]; known {
			continue
		}
		if b, ok := v.(bool); ok {
			out[k] = b
		}
	}
	return out
}
