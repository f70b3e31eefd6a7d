package ports

import websocketdto "waste-collect/internal/pickup-service/core/domain/websocket_dto"

type INotifyWebsocket interface {
	WriteToUser(userID string, msg websocketdto.Event)
}
