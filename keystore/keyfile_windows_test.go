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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func TestCheckSDDL(t *testing.T) {
	testDefs := []struct {
		name    string
		sddl    string
		trustee string
	}{
		{name: "owner only", sddl: "O:S-1-5-21-1-2-3-1001D:P(A;;FA;;;S-1-5-21-1-2-3-1001)"},
		{name: "system and admins", sddl: "D:P(A;;FA;;;SY)(A;;FA;;;BA)"},
		{name: "everyone denied", sddl: "D:(D;;GA;;;WD)(A;;FA;;;SY)"},
		{name: "everyone", sddl: "D:(A;;GR;;;WD)", trustee: "Everyone"},
		{name: "everyone by sid", sddl: "D:(A;;GR;;;S-1-1-0)", trustee: "Everyone"},
		{name: "users", sddl: "D:AI(A;;FA;;;SY)(A;ID;0x1200a9;;;BU)", trustee: "BUILTIN\\Users"},
		{name: "authenticated users", sddl: "D:(A;;GR;;;AU)S:(AU;FA;GA;;;WD)", trustee: "Authenticated Users"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := checkSDDL("id.json", testDef.sddl)
			if testDef.trustee == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInsecureFileMode)
			assert.Contains(t, err.Error(), testDef.trustee)
		})
	}
	err := checkSDDL("id.json", "O:BA")
	require.ErrorIs(t, err, ErrInsecureFileMode)
	assert.Contains(t, err.Error(), "no DACL")
}

func setFileDACL(t *testing.T, path string, sddl string) {
	t.Helper()
	sd, err := windows.SecurityDescriptorFromString(sddl)
	require.NoError(t, err)
	dacl, _, err := sd.DACL()
	require.NoError(t, err)
	require.NoError(t, windows.SetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION|
			windows.PROTECTED_DACL_SECURITY_INFORMATION,
		nil, nil, dacl, nil,
	))
}

func currentUserSID(t *testing.T) string {
	t.Helper()
	var token windows.Token
	require.NoError(t, windows.OpenProcessToken(
		windows.CurrentProcess(),
		windows.TOKEN_QUERY,
		&token,
	))
	defer token.Close()
	user, err := token.GetTokenUser()
	require.NoError(t, err)
	return user.User.Sid.String()
}

func checkPath(t *testing.T, path string) error {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	return checkOpenFilePermissions(f)
}

func TestKeyFileDACL(t *testing.T) {
	t.Setenv(EnvAllowInsecureKeyPerms, "")
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	// Temp dirs usually inherit an ACE for BUILTIN\Users, so lock it down
	setFileDACL(t, path, fmt.Sprintf("D:P(A;;GA;;;%s)", currentUserSID(t)))
	require.NoError(t, checkPath(t, path))

	setFileDACL(
		t,
		path,
		fmt.Sprintf("D:P(A;;GA;;;%s)(A;;GR;;;WD)", currentUserSID(t)),
	)
	err := checkPath(t, path)
	require.ErrorIs(t, err, ErrInsecureFileMode)
	assert.Contains(t, err.Error(), "Everyone")

	t.Setenv(EnvAllowInsecureKeyPerms, "true")
	assert.NoError(t, checkPath(t, path))
}
