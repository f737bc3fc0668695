package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type divisionDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Credentials []struct {
		ID       string `json:"id"`
		Site     string `json:"site"`
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"credentials"`
}

func TestVault_CRUDRoundTrip(t *testing.T) {
	c, _ := registerAndLogin(t, "grace@e2e.test", "Str0ngPass!", "Laptop")

	// 認証なしでは触れない
	anon := NewTestClient(t)
	resp, _ := anon.doJSON(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// division作成
	resp, body := c.doJSON(t, http.MethodPost, "/api/dashboard/divisions", map[string]string{
		"name": "Work",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var div divisionDTO
	decode(t, body, &div)
	assert.Equal(t, "Work", div.Name)

	// 同名は弾かれる
	resp, _ = c.doJSON(t, http.MethodPost, "/api/dashboard/divisions", map[string]string{
		"name": "Work",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// credential追加。レスポンスには平文が返るがDBには封緘済みで入る
	resp, body = c.doJSON(t, http.MethodPost, "/api/dashboard/divisions/"+div.ID+"/credentials", map[string]string{
		"site": "github.com", "username": "grace", "password": "hunter2!",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var cred struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}
	decode(t, body, &cred)
	assert.Equal(t, "hunter2!", cred.Password)

	// 読み出しで復号されて戻る
	resp, body = c.doJSON(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var vaultOut struct {
		Divisions []divisionDTO `json:"divisions"`
	}
	decode(t, body, &vaultOut)
	assert.Len(t, vaultOut.Divisions, 1)
	assert.Len(t, vaultOut.Divisions[0].Credentials, 1)
	assert.Equal(t, "hunter2!", vaultOut.Divisions[0].Credentials[0].Password)

	// 更新（パスワードだけ差し替え）
	resp, body = c.doJSON(t, http.MethodPut, "/api/dashboard/credentials/"+cred.ID, map[string]string{
		"password": "n3w-secret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		Password string `json:"password"`
	}
	decode(t, body, &updated)
	assert.Equal(t, "n3w-secret", updated.Password)

	// 他人からは見えない・消せない
	other, _ := registerAndLogin(t, "heidi@e2e.test", "Str0ngPass!", "Laptop")
	resp, body = other.doJSON(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var otherVault struct {
		Divisions []divisionDTO `json:"divisions"`
	}
	decode(t, body, &otherVault)
	assert.Empty(t, otherVault.Divisions)

	resp, _ = other.doJSON(t, http.MethodDelete, "/api/dashboard/credentials/"+cred.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 本人は消せる
	resp, _ = c.doJSON(t, http.MethodDelete, "/api/dashboard/credentials/"+cred.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// divisionごと削除
	resp, _ = c.doJSON(t, http.MethodDelete, "/api/dashboard/divisions/"+div.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = c.doJSON(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, body, &vaultOut)
	assert.Empty(t, vaultOut.Divisions)
}
