package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/role"
)

type (
	messageApi struct {
		svc      *message.Service
		validate *validator.Validate
	}

	newChannel struct {
		ChannelName string `json:"channelName" validate:"required"`
		ChannelType int    `json:"channelType" validate:"required,oneof=1 2"`
		Users       []int  `json:"users" validate:"required,min=1"`
	}

	channelCreated struct {
		ChannelID int `json:"channelId"`
	}
)

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := messageApi{svc: deps.MessageSvc, validate: deps.Validate}
	authed := []echo.MiddlewareFunc{jwt, claimsMiddleware(auth)}

	mg := g.Group("/message", authed...)
	mg.POST("/create/channel", api.createChannel)
	mg.GET("/:channelId/users/detail", api.channelUsers)
	mg.POST("/send", api.send)
	mg.GET("/channel/:channelId/messages", api.messages)

	ng := g.Group("/notification", authed...)
	ng.GET("/get/all/:userId", api.notifications, selfOrRolesMiddleware(role.Administrator))
	ng.DELETE("/clear/all/:userId", api.clearNotifications, selfOrRolesMiddleware(role.Administrator))
}

func (api *messageApi) createChannel(ctx echo.Context) error {
	var data newChannel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to newChannel")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	members := data.Users
	if self := contextClaims(ctx).UserID; !containsInt(members, self) {
		members = append(members, self)
	}
	c, err := api.svc.CreateChannel(message.Channel{Name: data.ChannelName, Type: data.ChannelType, Members: members})
	if err != nil {
		return errors.Wrap(err, "creating channel")
	}
	return ctx.JSON(http.StatusCreated, channelCreated{ChannelID: c.ID})
}

func (api *messageApi) channelUsers(ctx echo.Context) error {
	id, err := intParam(ctx, "channelId")
	if err != nil {
		return err
	}
	users, err := api.svc.ChannelUsers(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *messageApi) send(ctx echo.Context) error {
	var data message.Send
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Send")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	if data.SenderID != contextClaims(ctx).UserID {
		return errHttpForbidden
	}

	msg, err := api.svc.Send(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) messages(ctx echo.Context) error {
	id, err := intParam(ctx, "channelId")
	if err != nil {
		return err
	}
	msgs, err := api.svc.Messages(id)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) notifications(ctx echo.Context) error {
	id, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	notifs, err := api.svc.Notifications(id)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []message.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *messageApi) clearNotifications(ctx echo.Context) error {
	id, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	if err := api.svc.ClearNotifications(id); err != nil {
		return errors.Wrap(err, "clearing notifications")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func containsInt(ids []int, id int) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
