// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package keystore

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// EnvAllowInsecureKeyPerms skips the ACL check when set to "true"
const EnvAllowInsecureKeyPerms = "CROWDFUND_ALLOW_INSECURE_KEY_PERMS"

// Well-known trustees that must not be granted access, by SDDL alias and SID
var broadTrustees = map[string]string{
	"WD":           "Everyone",
	"S-1-1-0":      "Everyone",
	"BU":           "BUILTIN\\Users",
	"S-1-5-32-545": "BUILTIN\\Users",
	"AU":           "Authenticated Users",
	"S-1-5-11":     "Authenticated Users",
}

// checkOpenFilePermissions inspects the DACL of the key file. NTFS does not
// allow an open file to be replaced, so checking by name is safe here
func checkOpenFilePermissions(f *os.File) error {
	if strings.EqualFold(os.Getenv(EnvAllowInsecureKeyPerms), "true") {
		slog.Warn(
			"key file ACL check bypassed",
			"component", "keystore",
			"path", f.Name(),
		)
		return nil
	}
	sd, err := windows.GetNamedSecurityInfo(
		f.Name(),
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION,
	)
	if err != nil {
		return fmt.Errorf("read security info for %q: %w", f.Name(), err)
	}
	return checkSDDL(f.Name(), sd.String())
}

// checkSDDL fails when the DACL is missing or has an allow entry for one of
// the broad trustees
func checkSDDL(path, sddl string) error {
	_, dacl, found := strings.Cut(sddl, "D:")
	if !found {
		return fmt.Errorf(
			"%w: key file %q has no DACL",
			ErrInsecureFileMode,
			path,
		)
	}
	if before, _, ok := strings.Cut(dacl, "S:"); ok {
		dacl = before
	}
	for _, entry := range strings.Split(dacl, "(")[1:] {
		ace, _, _ := strings.Cut(entry, ")")
		// type;flags;rights;object;inherit;trustee
		fields := strings.Split(ace, ";")
		if len(fields) < 6 || fields[0] != "A" {
			continue
		}
		if name, ok := broadTrustees[fields[5]]; ok {
			return fmt.Errorf(
				"%w: key file %q grants access to %s",
				ErrInsecureFileMode,
				path,
				name,
			)
		}
	}
	return nil
}
