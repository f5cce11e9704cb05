package common

import "github.com/gin-gonic/gin"

// Uniform response envelope: {code, message, data}. code 0 means success;
// non-zero codes are stable application error codes.
func OK(c *gin.Context, data any) {
	c.JSON(200, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
