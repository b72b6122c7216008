package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
)

const (
	HeaderCaller    = "X-Caller"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"

	contextCallerKey = "auth.caller"
)

// ReplayGuard 记录已使用的签名，签名在有效期内只能使用一次
type ReplayGuard interface {
	// UseSignature 首次登记返回 true，已登记且未过期返回 false
	UseSignature(ctx context.Context, key common.Hash, caller common.Address, expiresAt int64) (bool, error)
}

// Middleware 校验调用者签名，通过后把调用者地址放入上下文
func Middleware(maxSkew time.Duration, now func() time.Time, guard ReplayGuard) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		callerHex := c.GetHeader(HeaderCaller)
		if !common.IsHexAddress(callerHex) {
			unauthorized(c, "缺少或无效的调用者地址")
			return
		}

		ts, err := strconv.ParseInt(c.GetHeader(HeaderTimestamp), 10, 64)
		if err != nil {
			unauthorized(c, "无效的签名时间")
			return
		}
		if skew := now().Sub(time.Unix(ts, 0)); skew > maxSkew || skew < -maxSkew {
			unauthorized(c, "签名已过期")
			return
		}

		sig, err := hexutil.Decode(c.GetHeader(HeaderSignature))
		if err != nil {
			unauthorized(c, "无效的签名")
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			unauthorized(c, "读取请求体失败")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		msg := SigningMessage(c.Request.Method, c.Request.URL.Path, ts, body)
		signer, err := Recover(msg, sig)
		if err != nil || signer != common.HexToAddress(callerHex) {
			unauthorized(c, "签名与调用者不匹配")
			return
		}

		// 按签名原文登记，同一原文的不同签名编码视为同一请求
		fresh, err := guard.UseSignature(c.Request.Context(), ReplayKey(signer, msg), signer, time.Unix(ts, 0).Add(maxSkew).Unix())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "校验签名失败",
				"code":    "INTERNAL_ERROR",
				"data":    nil,
			})
			return
		}
		if !fresh {
			unauthorized(c, "签名已被使用")
			return
		}

		c.Set(contextCallerKey, signer)
		c.Next()
	}
}

// ReplayKey 调用者与签名原文的摘要
func ReplayKey(caller common.Address, msg []byte) common.Hash {
	return crypto.Keccak256Hash(caller.Bytes(), msg)
}

// Caller 获取已校验的调用者地址
func Caller(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(contextCallerKey)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"code":    "UNAUTHORIZED",
		"data":    nil,
	})
}
