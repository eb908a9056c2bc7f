package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// watchPage logs navigations and console output at debug level and answers
// JavaScript dialogs, which would otherwise freeze an unattended kiosk.
// The handlers stop when the page goes away.
func watchPage(page *rod.Page, logger logrus.FieldLogger) {
	go page.EachEvent(func(e *proto.PageFrameNavigated) {
		if e.Frame.ParentID == "" {
			logger.WithField("url", e.Frame.URL).Debug("navigated")
		}
	}, func(e *proto.RuntimeConsoleAPICalled) {
		logger.WithField("type", e.Type).Debug("console: " + consoleText(e.Args))
	}, func(e *proto.PageJavascriptDialogOpening) {
		logger.WithFields(logrus.Fields{
			"type":    e.Type,
			"message": e.Message,
		}).Info("dismissing page dialog")
		err := dialogResponse(e).Call(page)
		if err != nil {
			logger.WithError(err).Warn("could not answer page dialog")
		}
	})()
}

// dialogResponse accepts every dialog; prompts get their default text.
func dialogResponse(e *proto.PageJavascriptDialogOpening) proto.PageHandleJavaScriptDialog {
	resp := proto.PageHandleJavaScriptDialog{Accept: true}
	if e.Type == proto.PageDialogTypePrompt {
		resp.PromptText = e.DefaultPrompt
	}
	return resp
}

func consoleText(args []*proto.RuntimeRemoteObject) string {
	var text string
	for i, arg := range args {
		if i > 0 {
			text += " "
		}
		switch {
		case arg.Value.Nil() && arg.Description != "":
			text += arg.Description
		case arg.Value.Nil():
			text += string(arg.Type)
		default:
			text += arg.Value.String()
		}
	}
	return text
}
